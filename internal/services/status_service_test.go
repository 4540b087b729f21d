package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
)

func officialActor() *models.Actor {
	return &models.Actor{
		ID:       primitive.NewObjectID(),
		FullName: "Alex Inspector",
		Username: "alex.inspector",
		Role:     constants.RoleOfficial,
	}
}

func TestUpdateStatusRejectsBlankNote(t *testing.T) {
	reports := newMockReportRepo()
	service := NewStatusService(reports, newMockStatusRepo(reports))
	report := seedReport(t, reports)

	for _, note := range []string{"", "  ", "\n\t"} {
		_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, note, officialActor())
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestUpdateStatusRejectsOverlongNote(t *testing.T) {
	reports := newMockReportRepo()
	service := NewStatusService(reports, newMockStatusRepo(reports))
	report := seedReport(t, reports)

	note := strings.Repeat("x", constants.MaxStatusNoteLength+1)
	_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, note, officialActor())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	reports := newMockReportRepo()
	service := NewStatusService(reports, newMockStatusRepo(reports))
	report := seedReport(t, reports)

	_, err := service.UpdateStatus(context.Background(), report.ID, "escalated", "sent upstairs", officialActor())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestUpdateStatusCouplesStatusAndAudit(t *testing.T) {
	reports := newMockReportRepo()
	statuses := newMockStatusRepo(reports)
	service := NewStatusService(reports, statuses)
	report := seedReport(t, reports)
	actor := officialActor()

	update, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, "crew dispatched", actor)
	require.NoError(t, err)
	assert.False(t, update.ID.IsZero())
	assert.Equal(t, actor.FullName, update.AuthorFullName)
	assert.Equal(t, actor.Username, update.AuthorUsername)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusInProgress, stored.Status)

	trail, err := service.GetStatusUpdates(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "crew dispatched", trail[0].Note)
}

func TestUpdateStatusAuditTrailAccumulates(t *testing.T) {
	reports := newMockReportRepo()
	statuses := newMockStatusRepo(reports)
	service := NewStatusService(reports, statuses)
	report := seedReport(t, reports)

	_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, "crew dispatched", officialActor())
	require.NoError(t, err)
	_, err = service.UpdateStatus(context.Background(), report.ID, constants.StatusResolved, "lamp replaced", officialActor())
	require.NoError(t, err)

	trail, err := service.GetStatusUpdates(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, constants.StatusInProgress, trail[0].Status)
	assert.Equal(t, constants.StatusResolved, trail[1].Status)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusResolved, stored.Status)
}

func TestUpdateStatusAllowsAnyKnownTransition(t *testing.T) {
	reports := newMockReportRepo()
	service := NewStatusService(reports, newMockStatusRepo(reports))
	report := seedReport(t, reports)

	// Resolved back to new is unusual but allowed; history keeps the record.
	_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusResolved, "done", officialActor())
	require.NoError(t, err)
	_, err = service.UpdateStatus(context.Background(), report.ID, constants.StatusNew, "reopened, lamp out again", officialActor())
	require.NoError(t, err)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusNew, stored.Status)
}

func TestUpdateStatusRetriesPastConflicts(t *testing.T) {
	reports := newMockReportRepo()
	statuses := newMockStatusRepo(reports)
	service := NewStatusService(reports, statuses)
	report := seedReport(t, reports)

	statuses.txConflicts = constants.StatusUpdateMaxAttempts - 1

	_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, "crew dispatched", officialActor())
	require.NoError(t, err)

	trail, err := service.GetStatusUpdates(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestUpdateStatusGivesUpAfterMaxAttempts(t *testing.T) {
	reports := newMockReportRepo()
	statuses := newMockStatusRepo(reports)
	service := NewStatusService(reports, statuses)
	report := seedReport(t, reports)

	statuses.txConflicts = constants.StatusUpdateMaxAttempts

	_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, "crew dispatched", officialActor())
	require.Error(t, err)
	assert.True(t, errors.IsTransientConflict(err))

	// Neither side of the coupled write happened.
	trail, err := service.GetStatusUpdates(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Empty(t, trail)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusNew, stored.Status)
}

func TestUpdateStatusMissingReport(t *testing.T) {
	reports := newMockReportRepo()
	statuses := newMockStatusRepo(reports)
	service := NewStatusService(reports, statuses)
	missing := primitive.NewObjectID()

	_, err := service.UpdateStatus(context.Background(), missing, constants.StatusInProgress, "crew dispatched", officialActor())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	trail, err := service.GetStatusUpdates(context.Background(), missing)
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestGetStatusUpdatesEmptyTrail(t *testing.T) {
	reports := newMockReportRepo()
	service := NewStatusService(reports, newMockStatusRepo(reports))
	report := seedReport(t, reports)

	trail, err := service.GetStatusUpdates(context.Background(), report.ID)
	require.NoError(t, err)
	assert.NotNil(t, trail)
	assert.Empty(t, trail)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	reports := newMockReportRepo()
	service := NewStatusService(reports, newMockStatusRepo(reports))
	report := seedReport(t, reports)

	err := service.DeletePost(context.Background(), report.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, "AUTHORIZATION_ERROR", errors.GetErrorCode(err))

	// Still there.
	_, err = reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeletePost(context.Background(), report.ID, report.AuthorID))

	_, err = reports.GetByID(context.Background(), report.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateStatusDoesNotRetryHardFailures(t *testing.T) {
	reports := newMockReportRepo()
	statuses := newMockStatusRepo(reports)
	statuses.txFailures = 1
	service := NewStatusService(reports, statuses)
	report := seedReport(t, reports)

	_, err := service.UpdateStatus(context.Background(), report.ID, constants.StatusInProgress, "crew dispatched", officialActor())
	require.Error(t, err)
	assert.Equal(t, "DATABASE_ERROR", errors.GetErrorCode(err))
	assert.Equal(t, 1, statuses.appendCalls)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusNew, stored.Status)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
)

func seedReport(t *testing.T, repo *mockReportRepo) *models.Report {
	t.Helper()

	report := &models.Report{
		AuthorID:    primitive.NewObjectID(),
		Title:       "Broken streetlight",
		Description: "The light at the corner has been out for a week",
		Category:    "lighting",
		District:    "north",
	}
	require.NoError(t, repo.Create(context.Background(), report))
	return report
}

func TestToggleUpvoteAddsAndRemoves(t *testing.T) {
	repo := newMockReportRepo()
	service := NewVoteService(repo)
	report := seedReport(t, repo)
	userID := primitive.NewObjectID()

	updated, err := service.ToggleUpvote(context.Background(), report.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.UpvoteCount)
	assert.True(t, updated.HasUpvoted)
	assert.True(t, updated.HasUpvoteFrom(userID))

	updated, err = service.ToggleUpvote(context.Background(), report.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.UpvoteCount)
	assert.False(t, updated.HasUpvoted)
	assert.False(t, updated.HasUpvoteFrom(userID))
}

func TestToggleUpvoteCountMirrorsSet(t *testing.T) {
	repo := newMockReportRepo()
	service := NewVoteService(repo)
	report := seedReport(t, repo)

	users := make([]primitive.ObjectID, 5)
	for i := range users {
		users[i] = primitive.NewObjectID()
		_, err := service.ToggleUpvote(context.Background(), report.ID, users[i])
		require.NoError(t, err)
	}

	// One user withdraws.
	_, err := service.ToggleUpvote(context.Background(), report.ID, users[2])
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(stored.UpvotedBy)), stored.UpvoteCount)
	assert.Equal(t, int64(4), stored.UpvoteCount)
	assert.False(t, stored.HasUpvoteFrom(users[2]))
}

func TestToggleUpvoteRetriesPastConflicts(t *testing.T) {
	repo := newMockReportRepo()
	service := NewVoteService(repo)
	report := seedReport(t, repo)
	userID := primitive.NewObjectID()

	repo.casConflicts = constants.VoteToggleMaxAttempts - 1

	updated, err := service.ToggleUpvote(context.Background(), report.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.UpvoteCount)
	assert.True(t, updated.HasUpvoted)
}

func TestToggleUpvoteGivesUpAfterMaxAttempts(t *testing.T) {
	repo := newMockReportRepo()
	service := NewVoteService(repo)
	report := seedReport(t, repo)

	repo.casConflicts = constants.VoteToggleMaxAttempts

	_, err := service.ToggleUpvote(context.Background(), report.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, errors.IsTransientConflict(err))

	stored, err := repo.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.UpvoteCount)
}

func TestToggleUpvoteConcurrentTogglersBothLand(t *testing.T) {
	repo := newMockReportRepo()
	service := NewVoteService(repo)
	report := seedReport(t, repo)

	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	// userB's toggle lands between userA's read and userA's conditional
	// write. userA's first write must fail and the retry must land on top
	// of userB's vote without erasing it.
	repo.beforeCAS = func(r *mockReportRepo) {
		r.toggleDirect(report.ID, userB)
	}

	updated, err := service.ToggleUpvote(context.Background(), report.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.UpvoteCount)
	assert.True(t, updated.HasUpvoteFrom(userA))
	assert.True(t, updated.HasUpvoteFrom(userB))
}

func TestToggleUpvoteReportNotFound(t *testing.T) {
	repo := newMockReportRepo()
	service := NewVoteService(repo)

	_, err := service.ToggleUpvote(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

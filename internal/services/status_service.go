package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// StatusService drives the report status lifecycle. Every transition pairs
// the status write with an append-only audit record; the audit trail is the
// authoritative history of a report.
//
// Transitions are deliberately permissive: any known status is accepted from
// any current state. A strict transition table was considered and rejected to
// preserve the existing behavior; unknown statuses are still refused.
type StatusService interface {
	UpdateStatus(ctx context.Context, postID primitive.ObjectID, newStatus, note string, actor *models.Actor) (*models.StatusUpdate, error)
	GetStatusUpdates(ctx context.Context, postID primitive.ObjectID) ([]*models.StatusUpdate, error)
	DeletePost(ctx context.Context, postID, actorID primitive.ObjectID) error
}

// statusService implements StatusService
type statusService struct {
	reportRepo repository.ReportRepository
	statusRepo repository.StatusRepository
	logger     *logger.Logger
}

// NewStatusService creates a new status service
func NewStatusService(reportRepo repository.ReportRepository, statusRepo repository.StatusRepository) StatusService {
	return &statusService{
		reportRepo: reportRepo,
		statusRepo: statusRepo,
		logger:     logger.NewComponentLogger("StatusService"),
	}
}

// UpdateStatus sets the report's status and appends the audit record in one
// transaction. The note is mandatory; a status change without its audit
// record (or vice versa) cannot happen.
func (s *statusService) UpdateStatus(ctx context.Context, postID primitive.ObjectID, newStatus, note string, actor *models.Actor) (*models.StatusUpdate, error) {
	if utils.IsBlank(note) {
		return nil, errors.NewBlankNoteError()
	}
	if len(note) > constants.MaxStatusNoteLength {
		return nil, errors.NewInvalidFieldError("note", "too long")
	}
	if !constants.IsValidStatus(newStatus) {
		return nil, errors.NewInvalidStatusError(newStatus)
	}
	if actor == nil {
		return nil, errors.NewRequiredFieldError("actor")
	}

	update := &models.StatusUpdate{
		PostID:         postID,
		Status:         newStatus,
		Note:           note,
		AuthorID:       actor.ID,
		AuthorFullName: actor.FullName,
		AuthorUsername: actor.Username,
	}

	var err error
	for attempt := 1; attempt <= constants.StatusUpdateMaxAttempts; attempt++ {
		err = s.statusRepo.AppendWithStatus(ctx, update)
		if err == nil {
			return update, nil
		}
		if !errors.IsTransientConflict(err) {
			return nil, err
		}

		s.logger.WithFields(logger.Fields{
			"post_id": postID,
			"attempt": attempt,
		}).Debug("Status transaction collided, retrying")
	}

	return nil, err
}

// GetStatusUpdates returns the full audit trail, oldest first.
func (s *statusService) GetStatusUpdates(ctx context.Context, postID primitive.ObjectID) ([]*models.StatusUpdate, error) {
	return s.statusRepo.ListByPost(ctx, postID)
}

// DeletePost removes the report document. Only the author may delete.
// Comments and status history are not cascaded; orphaned sub-records are
// tolerated and cleaned up by an external batch job if at all.
func (s *statusService) DeletePost(ctx context.Context, postID, actorID primitive.ObjectID) error {
	report, err := s.reportRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if report.AuthorID != actorID {
		return errors.NewNotReportAuthorError()
	}

	return s.reportRepo.Delete(ctx, postID)
}

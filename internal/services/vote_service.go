package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// VoteService toggles a user's upvote on a report. The denormalized count and
// the membership set are only ever written together, so the count always
// equals the set's cardinality.
type VoteService interface {
	ToggleUpvote(ctx context.Context, reportID, userID primitive.ObjectID) (*models.Report, error)
}

// voteService implements VoteService
type voteService struct {
	reportRepo repository.ReportRepository
	logger     *logger.Logger
}

// NewVoteService creates a new vote service
func NewVoteService(reportRepo repository.ReportRepository) VoteService {
	return &voteService{
		reportRepo: reportRepo,
		logger:     logger.NewComponentLogger("VoteService"),
	}
}

// ToggleUpvote flips the user's membership in the upvote set. The whole
// read-modify-write reruns on a lost race, up to a bounded attempt count;
// each retry re-reads the authoritative set, so concurrent toggles by
// different users never lose an update.
func (s *voteService) ToggleUpvote(ctx context.Context, reportID, userID primitive.ObjectID) (*models.Report, error) {
	for attempt := 1; attempt <= constants.VoteToggleMaxAttempts; attempt++ {
		report, err := s.reportRepo.GetByID(ctx, reportID)
		if err != nil {
			return nil, err
		}

		updated := toggleMembership(report.UpvotedBy, userID)
		count := int64(len(updated))

		err = s.reportRepo.CompareAndSetVotes(ctx, reportID, report.UpvotedBy, updated, count)
		if err == nil {
			report.UpvotedBy = updated
			report.UpvoteCount = count
			report.HasUpvoted = report.HasUpvoteFrom(userID)
			return report, nil
		}

		if !errors.IsTransientConflict(err) {
			return nil, err
		}

		s.logger.WithFields(logger.Fields{
			"report_id": reportID,
			"user_id":   userID,
			"attempt":   attempt,
		}).Debug("Vote toggle collided, retrying")
	}

	s.logger.WithFields(logger.Fields{
		"report_id": reportID,
		"user_id":   userID,
	}).Warn("Vote toggle exhausted retries")
	return nil, errors.NewTransientConflictError("Report")
}

// toggleMembership returns a copy of set with userID added or removed.
func toggleMembership(set []primitive.ObjectID, userID primitive.ObjectID) []primitive.ObjectID {
	updated := make([]primitive.ObjectID, 0, len(set)+1)
	found := false
	for _, id := range set {
		if id == userID {
			found = true
			continue
		}
		updated = append(updated, id)
	}
	if !found {
		updated = append(updated, userID)
	}
	return updated
}

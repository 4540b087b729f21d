package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicwatch/internal/models"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// StatusRepository defines the status audit trail operations
type StatusRepository interface {
	// AppendWithStatus sets the report's status and appends the audit record
	// in one transaction. A status change without its audit record, or vice
	// versa, must be impossible.
	AppendWithStatus(ctx context.Context, update *models.StatusUpdate) error
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.StatusUpdate, error)
}

// statusRepository implements StatusRepository
type statusRepository struct {
	database                *mongo.Database
	reportsCollection       *mongo.Collection
	statusUpdatesCollection *mongo.Collection
	logger                  *logger.Logger
}

// NewStatusRepository creates a new status repository
func NewStatusRepository(database *mongo.Database) StatusRepository {
	return &statusRepository{
		database:                database,
		reportsCollection:       database.Collection(constants.ReportsCollection),
		statusUpdatesCollection: database.Collection(constants.StatusUpdatesCollection),
		logger:                  logger.NewComponentLogger("StatusRepository"),
	}
}

// AppendWithStatus performs the coupled writes inside a session transaction.
func (r *statusRepository) AppendWithStatus(ctx context.Context, update *models.StatusUpdate) error {
	if update.ID.IsZero() {
		update.ID = primitive.NewObjectID()
	}
	update.CreatedAt = time.Now()

	session, err := r.database.Client().StartSession()
	if err != nil {
		return errors.NewDatabaseError("Failed to start session", err)
	}
	defer session.EndSession(context.Background())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": update.PostID}
		set := bson.M{
			"$set": bson.M{
				"status":     update.Status,
				"updated_at": update.CreatedAt,
			},
		}

		result, err := r.reportsCollection.UpdateOne(sc, filter, set)
		if err != nil {
			return nil, errors.NewDatabaseQueryError(err)
		}
		if result.MatchedCount == 0 {
			return nil, errors.NewReportNotFoundError()
		}

		if _, err := r.statusUpdatesCollection.InsertOne(sc, update); err != nil {
			return nil, errors.NewDatabaseQueryError(err)
		}

		return nil, nil
	})

	if err != nil {
		if errors.IsAppError(err) {
			return err
		}
		if isTransientTransactionError(err) {
			r.logger.WithError(err).WithField("post_id", update.PostID).Warn("Status transaction conflicted")
			return errors.NewTransientConflictError("Report")
		}
		r.logger.WithError(err).WithField("post_id", update.PostID).Error("Status transaction failed")
		return errors.NewDatabaseError("Status transaction failed", err)
	}

	r.logger.WithFields(logger.Fields{
		"post_id": update.PostID,
		"status":  update.Status,
	}).Info("Status updated")
	return nil
}

// isTransientTransactionError reports whether the driver marked the failure
// as safe to retry. Only labeled errors become a retryable conflict; hard
// driver or network failures stay database errors.
func isTransientTransactionError(err error) bool {
	cmdErr, ok := err.(mongo.CommandError)
	if !ok {
		return false
	}
	return cmdErr.HasErrorLabel("TransientTransactionError") ||
		cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
}

// ListByPost returns the full audit trail, oldest first. The order is the
// authoritative history and is never reordered or deduplicated.
func (r *statusRepository) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.StatusUpdate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.statusUpdatesCollection.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		r.logger.WithError(err).WithField("post_id", postID).Error("Failed to list status updates")
		return nil, errors.NewDatabaseQueryError(err)
	}
	defer cursor.Close(ctx)

	updates := make([]*models.StatusUpdate, 0)
	if err := cursor.All(ctx, &updates); err != nil {
		r.logger.WithError(err).Error("Failed to decode status updates")
		return nil, errors.NewDatabaseQueryError(err)
	}

	return updates, nil
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"civicwatch/internal/models"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// ReportRepository defines all report document operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error)
	List(ctx context.Context, criteria *models.FilterCriteria, params *utils.PaginationParams) (*utils.PaginationResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// CompareAndSetVotes commits a vote toggle conditionally: the write only
	// applies if the stored upvote set still equals the set the caller read.
	// A lost race surfaces as a transient conflict.
	CompareAndSetVotes(ctx context.Context, id primitive.ObjectID, expected, updated []primitive.ObjectID, count int64) error
}

// reportRepository implements ReportRepository
type reportRepository struct {
	database          *mongo.Database
	reportsCollection *mongo.Collection
	logger            *logger.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(database *mongo.Database) ReportRepository {
	return &reportRepository{
		database:          database,
		reportsCollection: database.Collection(constants.ReportsCollection),
		logger:            logger.NewComponentLogger("ReportRepository"),
	}
}

// Create creates a new report document
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}

	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	if report.Status == "" {
		report.Status = constants.StatusNew
	}
	if report.UpvotedBy == nil {
		report.UpvotedBy = []primitive.ObjectID{}
	}
	report.UpvoteCount = int64(len(report.UpvotedBy))

	_, err := r.reportsCollection.InsertOne(ctx, report)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create report")
		return errors.NewDatabaseQueryError(err)
	}

	r.logger.WithField("report_id", report.ID).Info("Report created")
	return nil
}

// GetByID retrieves a report by ID
func (r *reportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	err := r.reportsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NewReportNotFoundError()
		}
		r.logger.WithError(err).WithField("report_id", id).Error("Failed to get report")
		return nil, errors.NewDatabaseQueryError(err)
	}

	return &report, nil
}

// List returns reports matching the criteria, newest first
func (r *reportRepository) List(ctx context.Context, criteria *models.FilterCriteria, params *utils.PaginationParams) (*utils.PaginationResult, error) {
	filter := buildCriteriaFilter(criteria)

	total, err := r.reportsCollection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.WithError(err).Error("Failed to count reports")
		return nil, errors.NewDatabaseQueryError(err)
	}

	opts := params.GetMongoOptions()
	cursor, err := r.reportsCollection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list reports")
		return nil, errors.NewDatabaseQueryError(err)
	}
	defer cursor.Close(ctx)

	reports := make([]*models.Report, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		r.logger.WithError(err).Error("Failed to decode reports")
		return nil, errors.NewDatabaseQueryError(err)
	}

	return utils.CreatePaginationResult(reports, params, total), nil
}

// Delete removes the report document only. Comments and status history are
// left in place; cleanup is an external batch concern.
func (r *reportRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.reportsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.WithError(err).WithField("report_id", id).Error("Failed to delete report")
		return errors.NewDatabaseQueryError(err)
	}

	if result.DeletedCount == 0 {
		return errors.NewReportNotFoundError()
	}

	r.logger.WithField("report_id", id).Info("Report deleted")
	return nil
}

// CompareAndSetVotes writes the upvote set and its count together, guarded by
// the set value the caller read. MatchedCount == 0 means another writer got
// there first (or the report vanished); the caller re-reads and retries.
func (r *reportRepository) CompareAndSetVotes(ctx context.Context, id primitive.ObjectID, expected, updated []primitive.ObjectID, count int64) error {
	filter := bson.M{
		"_id":        id,
		"upvoted_by": expected,
	}
	update := bson.M{
		"$set": bson.M{
			"upvoted_by":   updated,
			"upvote_count": count,
			"updated_at":   time.Now(),
		},
	}

	result, err := r.reportsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.WithError(err).WithField("report_id", id).Error("Failed to write vote toggle")
		return errors.NewDatabaseQueryError(err)
	}

	if result.MatchedCount == 0 {
		return errors.NewTransientConflictError("Report")
	}

	return nil
}

// buildCriteriaFilter maps the filter triple onto equality/$in conditions.
// Empty slices impose no restriction.
func buildCriteriaFilter(criteria *models.FilterCriteria) bson.M {
	filter := bson.M{}
	if criteria == nil {
		return filter
	}

	if len(criteria.Districts) > 0 {
		filter["district"] = bson.M{"$in": criteria.Districts}
	}
	if len(criteria.Categories) > 0 {
		filter["category"] = bson.M{"$in": criteria.Categories}
	}
	if len(criteria.Statuses) > 0 {
		filter["status"] = bson.M{"$in": criteria.Statuses}
	}

	return filter
}

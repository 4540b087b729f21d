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

// CommentRepository defines all comment document operations
type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	SoftDelete(ctx context.Context, postID, commentID primitive.ObjectID, deletedBy string) error
}

// commentRepository implements CommentRepository
type commentRepository struct {
	database           *mongo.Database
	commentsCollection *mongo.Collection
	logger             *logger.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(database *mongo.Database) CommentRepository {
	return &commentRepository{
		database:           database,
		commentsCollection: database.Collection(constants.CommentsCollection),
		logger:             logger.NewComponentLogger("CommentRepository"),
	}
}

// Insert persists a new comment with a server-assigned timestamp
func (r *commentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = time.Now()

	_, err := r.commentsCollection.InsertOne(ctx, comment)
	if err != nil {
		r.logger.WithError(err).Error("Failed to insert comment")
		return errors.NewDatabaseQueryError(err)
	}

	r.logger.WithFields(logger.Fields{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
	}).Debug("Comment inserted")
	return nil
}

// GetByID retrieves a comment by ID
func (r *commentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.commentsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NewCommentNotFoundError()
		}
		r.logger.WithError(err).WithField("comment_id", id).Error("Failed to get comment")
		return nil, errors.NewDatabaseQueryError(err)
	}

	return &comment, nil
}

// ListByPost returns every comment for the post, oldest first. Soft-deleted
// records are included; masking happens at presentation time.
func (r *commentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.commentsCollection.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		r.logger.WithError(err).WithField("post_id", postID).Error("Failed to list comments")
		return nil, errors.NewDatabaseQueryError(err)
	}
	defer cursor.Close(ctx)

	comments := make([]*models.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		r.logger.WithError(err).Error("Failed to decode comments")
		return nil, errors.NewDatabaseQueryError(err)
	}

	return comments, nil
}

// SoftDelete tombstones a comment without removing the record, preserving
// thread structure for existing replies.
func (r *commentRepository) SoftDelete(ctx context.Context, postID, commentID primitive.ObjectID, deletedBy string) error {
	filter := bson.M{"_id": commentID, "post_id": postID}
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_by": deletedBy,
		},
	}

	result, err := r.commentsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.WithError(err).WithField("comment_id", commentID).Error("Failed to soft-delete comment")
		return errors.NewDatabaseQueryError(err)
	}

	if result.MatchedCount == 0 {
		return errors.NewCommentNotFoundError()
	}

	r.logger.WithFields(logger.Fields{
		"comment_id": commentID,
		"deleted_by": deletedBy,
	}).Info("Comment soft-deleted")
	return nil
}

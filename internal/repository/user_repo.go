package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"civicwatch/internal/models"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// UserRepository reads the externally-managed users collection. It exists
// only for authorization stamping; writes belong to the identity service.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	usersCollection *mongo.Collection
	logger          *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *mongo.Database) UserRepository {
	return &userRepository{
		usersCollection: database.Collection(constants.UsersCollection),
		logger:          logger.NewComponentLogger("UserRepository"),
	}
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.usersCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NewUserNotFoundError()
		}
		r.logger.WithError(err).WithField("user_id", id).Error("Failed to get user")
		return nil, errors.NewDatabaseQueryError(err)
	}

	return &user, nil
}

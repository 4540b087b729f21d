package middleware

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/utils"
	"civicwatch/pkg/logger"
)

// AuthMiddleware handles user authentication and authorization
type AuthMiddleware struct {
	jwtManager *utils.JWTManager
	userRepo   repository.UserRepository
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(jwtManager *utils.JWTManager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		userRepo:   userRepo,
	}
}

// RequireAuth requires a valid token and resolves the caller into an actor.
// The actor identity is what gets stamped onto audit records downstream.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			utils.Unauthorized(c, "Authorization required")
			c.Abort()
			return
		}

		tokenString, err := utils.ExtractTokenFromHeader(token)
		if err != nil {
			utils.Unauthorized(c, "Invalid authorization format")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.Unauthorized(c, "User not found")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Set("actor", user.ToActor())

		ctx := logger.NewContextWithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is present but lets anonymous
// requests through. Read endpoints use it to stamp viewer-specific fields.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.Next()
			return
		}

		tokenString, err := utils.ExtractTokenFromHeader(token)
		if err != nil {
			c.Next()
			return
		}

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Set("actor", user.ToActor())

		ctx := logger.NewContextWithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole restricts a route to callers with one of the given roles.
// It must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "Insufficient permissions")
		c.Abort()
	}
}

// GetUserID extracts the authenticated user's id from the context.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}

// GetActor extracts the resolved actor identity from the context.
func GetActor(c *gin.Context) (*models.Actor, bool) {
	value, exists := c.Get("actor")
	if !exists {
		return nil, false
	}
	actor, ok := value.(*models.Actor)
	return actor, ok
}

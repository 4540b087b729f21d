package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
)

type stubUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NewUserNotFoundError()
	}
	return user, nil
}

func authFixture(t *testing.T, role string) (*AuthMiddleware, *models.User, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "ana.silva",
		FullName: "Ana Silva",
		Role:     role,
	}
	manager := utils.NewJWTManager("test-secret", time.Minute)
	token, err := manager.GenerateAccessToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)

	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	return NewAuthMiddleware(manager, repo), user, token
}

func TestRequireAuthResolvesActor(t *testing.T) {
	auth, user, token := authFixture(t, constants.RoleCitizen)

	router := gin.New()
	router.GET("/whoami", auth.RequireAuth(), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, actor)
	})

	request := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), user.Username)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	auth, _, _ := authFixture(t, constants.RoleCitizen)

	router := gin.New()
	router.GET("/whoami", auth.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	auth, _, _ := authFixture(t, constants.RoleCitizen)

	router := gin.New()
	router.GET("/whoami", auth.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	request.Header.Set("Authorization", "Bearer not-a-token")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireRoleBlocksInsufficientRole(t *testing.T) {
	auth, _, token := authFixture(t, constants.RoleCitizen)

	router := gin.New()
	router.PATCH("/restricted", auth.RequireAuth(), auth.RequireRole(constants.RoleOfficial, constants.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodPatch, "/restricted", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	auth, _, token := authFixture(t, constants.RoleOfficial)

	router := gin.New()
	router.PATCH("/restricted", auth.RequireAuth(), auth.RequireRole(constants.RoleOfficial, constants.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodPatch, "/restricted", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

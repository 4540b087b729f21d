package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"civicwatch/internal/config"
	"civicwatch/internal/handlers"
	"civicwatch/internal/middleware"
	"civicwatch/internal/repository"
	"civicwatch/internal/services"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
)

// Dependencies represents all the dependencies needed for routes
type Dependencies struct {
	Config   *config.Config
	Database *mongo.Database
	Postgres *sqlx.DB
	Redis    *redis.Client

	// Repositories
	ReportRepo        repository.ReportRepository
	CommentRepo       repository.CommentRepository
	StatusRepo        repository.StatusRepository
	UserRepo          repository.UserRepository
	PresetRepo        repository.PresetRepository
	AppliedFilterRepo repository.AppliedFilterRepository

	// Services
	ReportService  services.ReportService
	VoteService    services.VoteService
	CommentService services.CommentService
	StatusService  services.StatusService
	PresetService  services.PresetService

	// Handlers
	ReportHandler  *handlers.ReportHandler
	CommentHandler *handlers.CommentHandler
	StatusHandler  *handlers.StatusHandler
	PresetHandler  *handlers.PresetHandler

	// Middleware
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware

	// JWT Manager
	JWTManager *utils.JWTManager
}

// SetupRoutes sets up all routes and returns the configured router
func SetupRoutes(cfg *config.Config, db *mongo.Database, pg *sqlx.DB, redisClient *redis.Client) *gin.Engine {
	deps := initializeDependencies(cfg, db, pg, redisClient)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	setupMiddleware(router, deps)
	setupAPIRoutes(router, deps)
	setupHealthCheck(router, deps)

	return router
}

// initializeDependencies initializes all dependencies
func initializeDependencies(cfg *config.Config, db *mongo.Database, pg *sqlx.DB, redisClient *redis.Client) *Dependencies {
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Repositories
	reportRepo := repository.NewReportRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	userRepo := repository.NewUserRepository(db)
	presetRepo := repository.NewPresetRepository(pg)
	appliedFilterRepo := repository.NewAppliedFilterRepository(redisClient)

	// Services
	reportService := services.NewReportService(reportRepo)
	voteService := services.NewVoteService(reportRepo)
	commentService := services.NewCommentService(commentRepo)
	statusService := services.NewStatusService(reportRepo, statusRepo)
	presetService := services.NewPresetService(presetRepo, appliedFilterRepo)

	// Handlers
	reportHandler := handlers.NewReportHandler(reportService, voteService, statusService, presetService)
	commentHandler := handlers.NewCommentHandler(commentService, commentRepo)
	statusHandler := handlers.NewStatusHandler(statusService)
	presetHandler := handlers.NewPresetHandler(presetService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient, &cfg.RateLimit)
	loggingMiddleware := middleware.NewLoggingMiddleware()

	return &Dependencies{
		Config:              cfg,
		Database:            db,
		Postgres:            pg,
		Redis:               redisClient,
		ReportRepo:          reportRepo,
		CommentRepo:         commentRepo,
		StatusRepo:          statusRepo,
		UserRepo:            userRepo,
		PresetRepo:          presetRepo,
		AppliedFilterRepo:   appliedFilterRepo,
		ReportService:       reportService,
		VoteService:         voteService,
		CommentService:      commentService,
		StatusService:       statusService,
		PresetService:       presetService,
		ReportHandler:       reportHandler,
		CommentHandler:      commentHandler,
		StatusHandler:       statusHandler,
		PresetHandler:       presetHandler,
		AuthMiddleware:      authMiddleware,
		RateLimitMiddleware: rateLimitMiddleware,
		LoggingMiddleware:   loggingMiddleware,
		JWTManager:          jwtManager,
	}
}

// setupMiddleware sets up global middleware
func setupMiddleware(router *gin.Engine, deps *Dependencies) {
	router.Use(gin.Recovery())
	router.Use(deps.LoggingMiddleware.RequestID())
	router.Use(deps.LoggingMiddleware.LogRequests())
	router.Use(middleware.NewCorsMiddleware(&deps.Config.CORS))
	router.Use(deps.RateLimitMiddleware.Global())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
}

// setupAPIRoutes sets up all API routes
func setupAPIRoutes(router *gin.Engine, deps *Dependencies) {
	api := router.Group("/api/" + constants.APIVersion)

	auth := deps.AuthMiddleware
	rl := deps.RateLimitMiddleware

	reports := api.Group("/reports")
	{
		reports.GET("", auth.OptionalAuth(), deps.ReportHandler.ListReports)
		reports.POST("", auth.RequireAuth(),
			rl.PerUser(constants.MaxReportsPerMinute, constants.RateLimitWindow),
			deps.ReportHandler.CreateReport)
		reports.GET("/:report_id", auth.OptionalAuth(), deps.ReportHandler.GetReport)
		reports.DELETE("/:report_id", auth.RequireAuth(), deps.ReportHandler.DeleteReport)

		reports.POST("/:report_id/upvote", auth.RequireAuth(), deps.ReportHandler.ToggleUpvote)

		reports.GET("/:report_id/comments", deps.CommentHandler.GetComments)
		reports.POST("/:report_id/comments", auth.RequireAuth(),
			rl.PerUser(constants.MaxCommentsPerMinute, constants.RateLimitWindow),
			deps.CommentHandler.AddComment)
		reports.POST("/:report_id/comments/:comment_id/replies", auth.RequireAuth(),
			rl.PerUser(constants.MaxCommentsPerMinute, constants.RateLimitWindow),
			deps.CommentHandler.AddReply)
		reports.DELETE("/:report_id/comments/:comment_id", auth.RequireAuth(), deps.CommentHandler.DeleteComment)

		reports.GET("/:report_id/status-updates", deps.StatusHandler.GetStatusUpdates)
		reports.PATCH("/:report_id/status", auth.RequireAuth(),
			auth.RequireRole(constants.RoleOfficial, constants.RoleAdmin),
			deps.StatusHandler.UpdateStatus)
	}

	filters := api.Group("/filters")
	{
		filters.GET("/presets", deps.PresetHandler.ListPresets)
		filters.GET("/presets/:preset_id", deps.PresetHandler.GetPreset)
		filters.POST("/presets", auth.RequireAuth(), deps.PresetHandler.CreatePreset)
		filters.DELETE("/presets/:preset_id", auth.RequireAuth(), deps.PresetHandler.DeletePreset)
		filters.PUT("/presets/:preset_id/default", auth.RequireAuth(), deps.PresetHandler.SetDefaultPreset)
		filters.POST("/presets/:preset_id/apply", auth.RequireAuth(), deps.PresetHandler.ApplyPreset)
		filters.POST("/apply", auth.RequireAuth(), deps.PresetHandler.ApplyCriteria)
		filters.GET("/active", deps.PresetHandler.GetActiveFilter)
		filters.DELETE("/active", auth.RequireAuth(), deps.PresetHandler.ClearActiveFilter)
	}
}

// setupHealthCheck sets up the health endpoint
func setupHealthCheck(router *gin.Engine, deps *Dependencies) {
	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		status := http.StatusOK
		checks := gin.H{"status": "ok", "time": time.Now().UTC()}

		if err := deps.Database.Client().Ping(ctx, nil); err != nil {
			status = http.StatusServiceUnavailable
			checks["mongo"] = err.Error()
		}
		if err := deps.Postgres.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["postgres"] = err.Error()
		}
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		}

		c.JSON(status, checks)
	})
}

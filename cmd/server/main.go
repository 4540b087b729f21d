package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicwatch/internal/config"
	"civicwatch/internal/repository"
	"civicwatch/internal/routes"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		logger.Warnf("Unknown log level %q, keeping default", cfg.Log.Level)
	}

	mongoClient, err := connectMongo(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	pg, err := connectPostgres(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}

	// The non-deletable system preset must exist before traffic arrives.
	if err := repository.NewPresetRepository(pg).EnsureSystemDefault(ctx); err != nil {
		logger.Fatalf("Failed to seed system default preset: %v", err)
	}

	router := routes.SetupRoutes(cfg, db, pg, redisClient)

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        router,
		ReadTimeout:    constants.ReadTimeout,
		WriteTimeout:   constants.WriteTimeout,
		IdleTimeout:    constants.IdleTimeout,
		MaxHeaderBytes: constants.MaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.Infof("%s listening on port %s", constants.AppName, cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server exited with error: %v", err)
	}

	logger.Info("Server stopped")
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(constants.MaxPoolSize).
		SetMinPoolSize(constants.MinPoolSize).
		SetMaxConnIdleTime(constants.MaxIdleTime)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	pg, err := sqlx.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := pg.PingContext(connectCtx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

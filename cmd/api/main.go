package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agrisense/api/internal/cache"
	"agrisense/api/internal/config"
	"agrisense/api/internal/database"
	"agrisense/api/internal/handlers"
	"agrisense/api/internal/jobs"
	"agrisense/api/internal/log"
	"agrisense/api/internal/queue"
	"agrisense/api/internal/repository"
	"agrisense/api/internal/security"
	"agrisense/api/internal/server"
	"agrisense/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	codec, err := security.NewTokenCodec(cfg.Security)
	if err != nil {
		logger.Fatal().Err(err).Msg("token secrets misconfigured")
	}

	ctx := context.Background()

	if err := database.Migrate(cfg.Postgres.DSN); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, codec, dbPool, redisClient, objectStore)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var simulator *jobs.Simulator
	if cfg.Simulator.Enabled {
		simulator = jobs.NewSimulator(
			cfg.Simulator.Schedule,
			repository.NewUserRepository(dbPool),
			repository.NewNpkRepository(dbPool),
			logger,
		)
		if err := simulator.Start(); err != nil {
			logger.Error().Err(err).Msg("simulator start failed")
		}
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	consumer := queue.NewConsumer(redisClient, cfg.Disease, handlerSet.Disease(), logger)
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("disease consumer stopped unexpectedly")
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, simulator, stopConsumer, dbPool, redisClient)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	simulator *jobs.Simulator,
	stopConsumer context.CancelFunc,
	db *pgxpool.Pool,
	redisClient *redis.Client,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if simulator != nil {
		simulator.Stop()
	}
	stopConsumer()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"plaza/api/internal/cache"
	"plaza/api/internal/config"
	"plaza/api/internal/database"
	"plaza/api/internal/handlers"
	"plaza/api/internal/jobs"
	"plaza/api/internal/log"
	"plaza/api/internal/phone"
	"plaza/api/internal/repository"
	"plaza/api/internal/server"
	"plaza/api/internal/service"
	"plaza/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	hasher, err := phone.NewHasher(cfg.Security.PhoneHashSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("phone hasher init failed")
	}

	ctx := context.Background()

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
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, hasher, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := newScheduler(cfg, dbPool, redisClient, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func newScheduler(cfg *config.AppConfig, dbPool *pgxpool.Pool, redisClient *redis.Client, logger zerolog.Logger) *jobs.Scheduler {
	statusRepo := repository.NewStatusRepository(dbPool)
	friendRepo := repository.NewFriendRepository(dbPool)
	statusCache := cache.NewStatusCache(redisClient, logger)
	statuses := service.NewStatusService(statusRepo, friendRepo, statusCache, logger)

	simulator := jobs.NewSimulator(cfg.Simulator, statuses, statusRepo, friendRepo, &jobs.SimulatorState{}, logger)
	return jobs.NewScheduler(simulator, logger)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}

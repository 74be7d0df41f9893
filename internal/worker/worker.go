// Package worker runs the background catalog sync on asynq.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/chapter-dash/internal/config"
	"github.com/jimdaga/chapter-dash/internal/events"
	"github.com/jimdaga/chapter-dash/internal/metrics"
	"github.com/jimdaga/chapter-dash/internal/models"
	"gorm.io/gorm"
)

const concurrency = 2

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run starts the worker server and blocks until a shutdown signal.
func Run(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
	srv, mux, err := newServer(cfg, db, logger)
	if err != nil {
		return err
	}
	return srv.Run(mux)
}

// Start runs the worker in the background and returns a stop function.
func Start(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (stop func(), err error) {
	srv, mux, err := newServer(cfg, db, logger)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     concurrency,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSyncCatalog, handleSyncCatalog(logger, db))

	logger.Info("Worker starting", "concurrency", concurrency)
	return srv, mux, nil
}

// handleSyncCatalog loads the manifest named in the payload and syncs it into
// the events table. Unreadable files are retried; invalid manifests are not.
func handleSyncCatalog(logger *slog.Logger, db *gorm.DB) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload syncCatalogPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}
		if payload.ManifestPath == "" {
			return fmt.Errorf("manifest path is required: %w", asynq.SkipRetry)
		}

		logger.Info("Processing catalog:sync task", "manifest", payload.ManifestPath)

		data, err := os.ReadFile(payload.ManifestPath)
		if err != nil {
			metrics.ObserveCatalogSync(models.CatalogSyncStatusFailed)
			return fmt.Errorf("failed to read catalog manifest: %w", err)
		}

		manifest, err := events.ParseManifest(data)
		if err != nil {
			metrics.ObserveCatalogSync(models.CatalogSyncStatusFailed)
			logger.Error("Catalog manifest rejected", "manifest", payload.ManifestPath, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		run, err := events.SyncCatalog(ctx, db, manifest, payload.ManifestPath)
		if err != nil {
			metrics.ObserveCatalogSync(models.CatalogSyncStatusFailed)
			return fmt.Errorf("catalog sync failed: %w", err)
		}

		metrics.ObserveCatalogSync(models.CatalogSyncStatusCompleted)
		logger.Info("Catalog sync completed", "sync_id", run.SyncID, "events", run.EventCount)
		return nil
	}
}

// makeErrorHandler logs failed tasks and notes when retries are exhausted
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}

package worker

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/chapter-dash/internal/config"
)

// StartScheduler registers the periodic catalog sync and starts the scheduler.
// Returns a stop function for graceful shutdown.
func StartScheduler(cfg *config.Config, logger *slog.Logger) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: cfg.Location(),
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	task, err := NewSyncCatalogTask(cfg.CatalogManifest)
	if err != nil {
		return nil, err
	}

	entryID, err := scheduler.Register(cfg.CatalogSyncSchedule, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register catalog sync schedule: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info(
		"Scheduler started",
		"schedule", cfg.CatalogSyncSchedule,
		"timezone", cfg.DisplayTimezone,
		"entry_id", entryID,
	)

	return func() { scheduler.Shutdown() }, nil
}

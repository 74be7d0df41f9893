package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskSyncCatalog = "catalog:sync"
)

type syncCatalogPayload struct {
	ManifestPath string `json:"manifest_path"`
}

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// NewSyncCatalogTask builds a catalog sync task for the manifest at path.
// Syncs are unique per manifest for a minute so a scheduled run and a
// startup run do not overlap.
func NewSyncCatalogTask(path string) (*asynq.Task, error) {
	payload, err := json.Marshal(syncCatalogPayload{ManifestPath: path})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(
		TaskSyncCatalog,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Minute),
	), nil
}

// EnqueueSyncCatalog queues an immediate catalog sync
func EnqueueSyncCatalog(path string) error {
	if client == nil {
		return fmt.Errorf("task client not initialized")
	}
	task, err := NewSyncCatalogTask(path)
	if err != nil {
		return err
	}
	if _, err := client.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue catalog sync: %w", err)
	}
	return nil
}

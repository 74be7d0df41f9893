package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jimdaga/chapter-dash/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncCatalog replaces the events table with the manifest contents and records the run.
//
// Events are upserted by ID with their manifest position; events missing from the
// manifest are removed. The returned CatalogSync reflects the final status even
// when the sync fails.
func SyncCatalog(ctx context.Context, db *gorm.DB, manifest *Manifest, source string) (*models.CatalogSync, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	now := time.Now()
	run := models.CatalogSync{
		SyncID:    uuid.New().String(),
		Source:    source,
		Status:    models.CatalogSyncStatusPending,
		StartedAt: &now,
	}
	if err := db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create catalog sync record: %w", err)
	}

	ids := make([]uint, 0, len(manifest.Events))
	for _, e := range manifest.Events {
		ids = append(ids, e.ID)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(manifest.Events) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"position", "title", "date", "time", "location", "category", "description", "attendees", "updated_at"}),
			}).Create(&manifest.Events).Error; err != nil {
				return fmt.Errorf("failed to upsert events: %w", err)
			}
		}

		stale := tx.Where("1 = 1")
		if len(ids) > 0 {
			stale = tx.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&models.Event{}).Error; err != nil {
			return fmt.Errorf("failed to remove stale events: %w", err)
		}
		return nil
	})

	completed := time.Now()
	if err != nil {
		db.WithContext(ctx).Model(&run).Updates(map[string]interface{}{
			"status":        models.CatalogSyncStatusFailed,
			"error_message": err.Error(),
			"completed_at":  completed,
		})
		run.Status = models.CatalogSyncStatusFailed
		run.ErrorMessage = err.Error()
		run.CompletedAt = &completed
		return &run, err
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return &run, fmt.Errorf("failed to marshal event ids: %w", err)
	}

	if err := db.WithContext(ctx).Model(&run).Updates(map[string]interface{}{
		"status":       models.CatalogSyncStatusCompleted,
		"event_count":  len(ids),
		"event_ids":    datatypes.JSON(idsJSON),
		"completed_at": completed,
	}).Error; err != nil {
		return &run, fmt.Errorf("failed to update catalog sync record: %w", err)
	}
	run.Status = models.CatalogSyncStatusCompleted
	run.EventCount = len(ids)
	run.EventIDs = datatypes.JSON(idsJSON)
	run.CompletedAt = &completed

	slog.Info("Catalog synced", "sync_id", run.SyncID, "source", source, "events", len(ids))
	return &run, nil
}

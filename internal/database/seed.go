package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jimdaga/chapter-dash/internal/events"
	"github.com/jimdaga/chapter-dash/internal/models"
	"gorm.io/gorm"
)

// DevAccount is the member seeded for local development
func DevAccount(now time.Time) models.Account {
	joined := now.AddDate(0, 0, -42)
	return models.Account{
		Email:       models.DevEmail,
		DisplayName: "Dev Member",
		Role:        "Vice President",
		Year:        "Junior",
		JoinedAt:    &joined,
	}
}

// SeedDevData creates the development member and, when the events table is
// empty, loads the sample catalog. Safe to call on every start.
func SeedDevData(ctx context.Context, db *gorm.DB, now time.Time) error {
	dev := DevAccount(now)

	var existing models.Account
	err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", dev.Email).First(&existing).Error
	switch {
	case err == nil:
		slog.Debug("Dev account already seeded", "email", dev.Email)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.WithContext(ctx).Create(&dev).Error; err != nil {
			return fmt.Errorf("failed to seed dev account: %w", err)
		}
		slog.Info("Seeded dev account", "email", dev.Email)
	default:
		return fmt.Errorf("failed to look up dev account: %w", err)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}
	if count > 0 {
		return nil
	}

	manifest := &events.Manifest{Events: events.SampleEvents()}
	for i := range manifest.Events {
		manifest.Events[i].Position = i
	}
	if _, err := events.SyncCatalog(ctx, db, manifest, "seed"); err != nil {
		return fmt.Errorf("failed to seed sample catalog: %w", err)
	}
	return nil
}

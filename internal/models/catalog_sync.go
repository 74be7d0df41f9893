package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Catalog sync status constants
const (
	CatalogSyncStatusPending   = "pending"
	CatalogSyncStatusCompleted = "completed"
	CatalogSyncStatusFailed    = "failed"
)

// CatalogSync tracks a single import of the event manifest into the events table
type CatalogSync struct {
	gorm.Model
	SyncID       string         `gorm:"uniqueIndex;not null"`
	Source       string         `gorm:"not null"`
	Status       string         `gorm:"not null;default:'pending';index"`
	EventCount   int            `gorm:"not null;default:0"`
	EventIDs     datatypes.JSON `gorm:"type:jsonb;column:event_ids"`
	ErrorMessage string         `gorm:"column:error_message;type:text"`
	StartedAt    *time.Time     `gorm:"column:started_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at"`
}

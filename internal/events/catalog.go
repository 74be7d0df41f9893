// Package events provides the chapter event catalog and the dashboard bucketing rules.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/timemath"
	"gorm.io/gorm"
)

// Catalog is a read-only source of events in catalog order
type Catalog interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// StaticCatalog serves a fixed in-memory list of events
type StaticCatalog struct {
	events []models.Event
}

// NewStaticCatalog creates a catalog over a copy of events
func NewStaticCatalog(events []models.Event) *StaticCatalog {
	cp := make([]models.Event, len(events))
	copy(cp, events)
	return &StaticCatalog{events: cp}
}

// ListEvents returns a copy of the catalog
func (c *StaticCatalog) ListEvents(ctx context.Context) ([]models.Event, error) {
	out := make([]models.Event, len(c.events))
	copy(out, c.events)
	return out, nil
}

// DBCatalog reads the catalog from the events table, ordered by manifest position
type DBCatalog struct {
	db *gorm.DB
}

// NewDBCatalog creates a database-backed catalog
func NewDBCatalog(db *gorm.DB) *DBCatalog {
	return &DBCatalog{db: db}
}

// ListEvents loads all events in catalog order
func (c *DBCatalog) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.db.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// SampleEvents returns the chapter's demo catalog
func SampleEvents() []models.Event {
	return []models.Event{
		{
			ID:          1,
			Title:       "AI/ML Workshop",
			Date:        "2025-12-15",
			Time:        "14:00",
			Location:    "Tech Lab 101",
			Category:    "workshop",
			Description: "Learn fundamentals of machine learning",
			Attendees:   45,
		},
		{
			ID:          2,
			Title:       "Winter Hackathon",
			Date:        "2025-12-20",
			Time:        "09:00",
			Location:    "Main Campus",
			Category:    "hackathon",
			Description: "48-hour coding competition",
			Attendees:   120,
		},
		{
			ID:          3,
			Title:       "Industry Panel Discussion",
			Date:        "2026-01-10",
			Time:        "16:00",
			Location:    "Auditorium A",
			Category:    "seminar",
			Description: "Meet professionals from top tech companies",
			Attendees:   200,
		},
		{
			ID:          4,
			Title:       "Web Dev Bootcamp",
			Date:        "2026-01-15",
			Time:        "15:00",
			Location:    "Online",
			Category:    "workshop",
			Description: "Master modern web development",
			Attendees:   60,
		},
		{
			ID:          5,
			Title:       "Monthly Meetup",
			Date:        "2026-01-12",
			Time:        "18:00",
			Location:    "Student Center",
			Category:    "meetup",
			Description: "Casual networking and social gathering",
			Attendees:   30,
		},
	}
}

// Card is the display form of an event
type Card struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	When        string `json:"when"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Attendees   int    `json:"attendees"`
	Category    string `json:"category"`
}

// CardOf formats an event for display, e.g. "Dec 15, 2025 at 14:00"
func CardOf(e models.Event) Card {
	return Card{
		ID:          e.ID,
		Title:       e.Title,
		When:        fmt.Sprintf("%s at %s", timemath.FormatDateString(e.Date), e.Time),
		Description: e.Description,
		Location:    e.Location,
		Attendees:   e.Attendees,
		Category:    e.Category,
	}
}

// CardsOf formats a list of events; the result is never nil
func CardsOf(events []models.Event) []Card {
	cards := make([]Card, 0, len(events))
	for _, e := range events {
		cards = append(cards, CardOf(e))
	}
	return cards
}

// startOf returns the event's start instant, used by exporters
func startOf(e models.Event, loc *time.Location) (time.Time, error) {
	return timemath.ParseInstant(e.Date, e.Time, loc)
}

// Package timeline builds the member's activity feed.
package timeline

import (
	"time"

	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/timemath"
)

// DefaultCap is the number of catalog events shown after the join entry
const DefaultCap = 3

// Fixed text for the join entry
const (
	JoinTitle    = "Joined ACM Chapter"
	JoinSubtitle = "Welcome to our student community!"
	// UnknownDateLabel labels an event whose catalog date does not parse
	UnknownDateLabel = "Date TBA"
)

// Entry is one row of the activity feed
type Entry struct {
	Label    string `json:"label"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Build returns the join entry followed by the first limit events in catalog order.
// Events keep catalog order. A nil joinedAt means the member joined now.
func Build(joinedAt *time.Time, events []models.Event, now time.Time, limit int) []Entry {
	joined := now
	if joinedAt != nil {
		joined = joinedAt.In(now.Location())
	}

	n := min(max(limit, 0), len(events))
	entries := make([]Entry, 0, n+1)
	entries = append(entries, Entry{
		Label:    timemath.FormatDisplayDate(joined),
		Title:    JoinTitle,
		Subtitle: JoinSubtitle,
	})

	for _, e := range events[:n] {
		entries = append(entries, Entry{
			Label:    statusLabel(e, now),
			Title:    e.Title,
			Subtitle: e.Location,
		})
	}
	return entries
}

func statusLabel(e models.Event, now time.Time) string {
	date, err := timemath.ParseDate(e.Date, now.Location())
	if err != nil {
		return UnknownDateLabel
	}
	return timemath.RelativeDayLabel(timemath.WallDaysBetween(now, date))
}

package events

import (
	"fmt"
	"log/slog"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/jimdaga/chapter-dash/internal/models"
)

const productID = "-//ACM Chapter//Member Dashboard//EN"

// ExportICS serializes events as an iCalendar feed. Each event lasts duration.
// Events with an unparseable date or time are skipped and logged.
func ExportICS(events []models.Event, duration time.Duration, loc *time.Location, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		start, err := startOf(e, loc)
		if err != nil {
			slog.Warn("Skipping event with invalid start in calendar export", "event_id", e.ID, "error", err)
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("event-%d@acm-chapter", e.ID))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(duration))
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
	}

	return cal.Serialize()
}

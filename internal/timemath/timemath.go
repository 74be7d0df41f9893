// Package timemath provides the day arithmetic and date labels used by the dashboard.
package timemath

import (
	"fmt"
	"time"
)

// Layouts used by the event catalog
const (
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
	DisplayLayout = "Jan 2, 2006"
)

const day = 24 * time.Hour

// DaysBetween returns the number of whole days from `from` to `to`, rounded toward
// negative infinity. The result is negative when `to` is before `from`.
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := d / day
	if d%day != 0 && d < 0 {
		days--
	}
	return int(days)
}

// WallDaysBetween is DaysBetween measured on the wall clocks of from and to, so a
// 23 or 25 hour daylight-saving day still counts as one day.
func WallDaysBetween(from, to time.Time) int {
	return DaysBetween(wall(from), wall(to))
}

func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// RelativeDayLabel turns a day offset into the status text shown on the timeline.
func RelativeDayLabel(days int) string {
	switch {
	case days < 0:
		return "Completed"
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %d days", days)
	}
}

// FormatDisplayDate renders t as "Dec 15, 2025".
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// ParseDate parses a YYYY-MM-DD catalog date as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", date, err)
	}
	return t, nil
}

// ParseInstant combines a catalog date and an HH:MM clock into a single instant in loc.
func ParseInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse instant %q %q: %w", date, clock, err)
	}
	return t, nil
}

// FormatDateString formats a catalog date for display. Input that does not parse
// is returned as-is so a bad catalog row still renders.
func FormatDateString(date string) string {
	t, err := ParseDate(date, time.UTC)
	if err != nil {
		return date
	}
	return FormatDisplayDate(t)
}

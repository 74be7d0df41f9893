package events

import (
	"math"
	"time"

	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/timemath"
)

// Policy controls how the catalog is split into dashboard buckets.
//
// Registration is positional: the first RegistrationCount events stand in for the
// member's registrations until a real registration relation exists. The upcoming
// window [UpcomingStart, UpcomingEnd) may overlap the registered bucket and is never
// deduplicated against it.
type Policy struct {
	RegistrationCount int
	UpcomingStart     int
	UpcomingEnd       int
	OngoingDuration   time.Duration
	Location          *time.Location
}

// DefaultPolicy returns the bucketing policy used by the dashboard.
func DefaultPolicy() Policy {
	return Policy{
		RegistrationCount: 2,
		UpcomingStart:     1,
		UpcomingEnd:       4,
		OngoingDuration:   2 * time.Hour,
		Location:          time.UTC,
	}
}

// Buckets holds the three dashboard partitions of the catalog.
type Buckets struct {
	Registered []models.Event `json:"registered"`
	Upcoming   []models.Event `json:"upcoming"`
	Ongoing    []models.Event `json:"ongoing"`
}

// Summary holds the counters shown in the stats panel.
type Summary struct {
	TotalEvents       int `json:"total_events"`
	AttendancePercent int `json:"attendance_percent"`
	AchievementCount  int `json:"achievement_count"`
}

// Aggregator partitions an event catalog according to a Policy.
type Aggregator struct {
	policy Policy
}

// NewAggregator creates an Aggregator for the given policy.
func NewAggregator(policy Policy) *Aggregator {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Aggregator{policy: policy}
}

// Policy returns the aggregator's policy.
func (a *Aggregator) Policy() Policy {
	return a.policy
}

// Bucket splits events into registered, upcoming and ongoing lists. Each list is
// a fresh slice; the input is not modified.
func (a *Aggregator) Bucket(events []models.Event, now time.Time) Buckets {
	b := Buckets{
		Registered: window(events, 0, a.policy.RegistrationCount),
		Upcoming:   window(events, a.policy.UpcomingStart, a.policy.UpcomingEnd),
		Ongoing:    []models.Event{},
	}
	for _, e := range events {
		if IsOngoing(e, now, a.policy.OngoingDuration, a.policy.Location) {
			b.Ongoing = append(b.Ongoing, e)
		}
	}
	return b
}

// Summarize computes the stats counters. An empty catalog yields all zeros.
func Summarize(events, registered []models.Event) Summary {
	s := Summary{
		TotalEvents:      len(events),
		AchievementCount: len(registered) / 2,
	}
	if len(events) > 0 {
		s.AttendancePercent = int(math.Round(100 * float64(len(registered)) / float64(len(events))))
	}
	return s
}

// IsOngoing reports whether now falls within [start, start+duration) for the event.
// Events whose date or time cannot be parsed are never ongoing.
func IsOngoing(e models.Event, now time.Time, duration time.Duration, loc *time.Location) bool {
	if duration <= 0 {
		return false
	}
	start, err := timemath.ParseInstant(e.Date, e.Time, loc)
	if err != nil {
		return false
	}
	return !now.Before(start) && now.Before(start.Add(duration))
}

// window returns a copy of events[from:to], clamped to the slice bounds.
func window(events []models.Event, from, to int) []models.Event {
	from = max(from, 0)
	to = min(to, len(events))
	if from >= to {
		return []models.Event{}
	}
	out := make([]models.Event, to-from)
	copy(out, events[from:to])
	return out
}

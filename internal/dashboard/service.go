// Package dashboard assembles the member dashboard view and serves it over HTTP.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jimdaga/chapter-dash/internal/events"
	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/preferences"
	"github.com/jimdaga/chapter-dash/internal/profile"
	"github.com/jimdaga/chapter-dash/internal/timeline"
)

// NoOngoingMessage is shown when the ongoing bucket is empty
const NoOngoingMessage = "No ongoing events at the moment."

// View is everything the renderer needs to paint one dashboard activation
type View struct {
	Profile  profile.View      `json:"profile"`
	Events   EventsView        `json:"events"`
	Summary  events.Summary    `json:"summary"`
	Timeline []timeline.Entry  `json:"timeline"`
	Theme    preferences.Theme `json:"theme"`
}

// EventsView holds the bucketed event cards and their counts
type EventsView struct {
	Registered      []events.Card `json:"registered"`
	Upcoming        []events.Card `json:"upcoming"`
	Ongoing         []events.Card `json:"ongoing"`
	RegisteredCount int           `json:"registered_count"`
	UpcomingCount   int           `json:"upcoming_count"`
	OngoingCount    int           `json:"ongoing_count"`
	OngoingEmpty    string        `json:"ongoing_empty,omitempty"`
}

// Options configures a Service
type Options struct {
	Policy      events.Policy
	TimelineCap int
	Logger      *slog.Logger
}

// Service recomputes the dashboard view from the account, catalog and clock
type Service struct {
	catalog     events.Catalog
	aggregator  *events.Aggregator
	timelineCap int
	location    *time.Location
	logger      *slog.Logger
}

// NewService creates a Service reading events from catalog
func NewService(catalog events.Catalog, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	agg := events.NewAggregator(opts.Policy)
	return &Service{
		catalog:     catalog,
		aggregator:  agg,
		timelineCap: opts.TimelineCap,
		location:    agg.Policy().Location,
		logger:      logger,
	}
}

// Location returns the display timezone
func (s *Service) Location() *time.Location {
	return s.location
}

// Activate builds the full dashboard view. Nothing is cached between calls.
func (s *Service) Activate(ctx context.Context, account models.Account, theme preferences.Theme, now time.Time) (*View, error) {
	catalog, err := s.catalog.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load event catalog: %w", err)
	}

	now = now.In(s.location)
	buckets := s.aggregator.Bucket(catalog, now)

	view := &View{
		Profile: profile.Build(account, now),
		Events: EventsView{
			Registered:      events.CardsOf(buckets.Registered),
			Upcoming:        events.CardsOf(buckets.Upcoming),
			Ongoing:         events.CardsOf(buckets.Ongoing),
			RegisteredCount: len(buckets.Registered),
			UpcomingCount:   len(buckets.Upcoming),
			OngoingCount:    len(buckets.Ongoing),
		},
		Summary:  events.Summarize(catalog, buckets.Registered),
		Timeline: timeline.Build(account.JoinedAt, catalog, now, s.timelineCap),
		Theme:    theme,
	}
	if len(buckets.Ongoing) == 0 {
		view.Events.OngoingEmpty = NoOngoingMessage
	}

	s.logger.Debug("Dashboard view built",
		"identity", account.Email,
		"catalog_size", len(catalog),
		"registered", len(buckets.Registered),
		"ongoing", len(buckets.Ongoing),
	)
	return view, nil
}

// Registered returns the events in the member's registered bucket
func (s *Service) Registered(ctx context.Context, now time.Time) ([]models.Event, error) {
	catalog, err := s.catalog.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load event catalog: %w", err)
	}
	return s.aggregator.Bucket(catalog, now.In(s.location)).Registered, nil
}

// CalendarExport renders the registered events as an iCalendar feed
func (s *Service) CalendarExport(ctx context.Context, now time.Time) (string, error) {
	registered, err := s.Registered(ctx, now)
	if err != nil {
		return "", err
	}
	return events.ExportICS(registered, s.aggregator.Policy().OngoingDuration, s.location, now.UTC()), nil
}

package timeline

import (
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jimdaga/chapter-dash/internal/events"
	"github.com/jimdaga/chapter-dash/internal/models"
)

func TestBuildSampleCatalog(t *testing.T) {
	joined := time.Date(2025, 11, 2, 15, 0, 0, 0, time.UTC)
	now := time.Date(2025, 12, 14, 10, 0, 0, 0, time.UTC)

	got := Build(&joined, events.SampleEvents(), now, DefaultCap)

	want := []Entry{
		{Label: "Nov 2, 2025", Title: "Joined ACM Chapter", Subtitle: "Welcome to our student community!"},
		// midnight Dec 15 is 14 hours away, which floors to zero days
		{Label: "Today", Title: "AI/ML Workshop", Subtitle: "Tech Lab 101"},
		{Label: "In 5 days", Title: "Winter Hackathon", Subtitle: "Main Campus"},
		{Label: "In 26 days", Title: "Industry Panel Discussion", Subtitle: "Auditorium A"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected timeline:\n got  %+v\n want %+v", got, want)
	}
}

func TestBuildLabels(t *testing.T) {
	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	catalog := []models.Event{
		{Title: "past", Date: "2025-12-19"},
		{Title: "today", Date: "2025-12-20"},
		{Title: "tomorrow", Date: "2025-12-21"},
		{Title: "bad", Date: "someday"},
	}

	got := Build(&now, catalog, now, 4)
	labels := []string{got[1].Label, got[2].Label, got[3].Label, got[4].Label}
	want := []string{"Completed", "Today", "Tomorrow", "Date TBA"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected labels %v, got %v", want, labels)
	}
}

func TestBuildKeepsCatalogOrder(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	catalog := []models.Event{
		{Title: "later", Date: "2026-03-01"},
		{Title: "sooner", Date: "2025-12-05"},
	}

	got := Build(nil, catalog, now, DefaultCap)
	if got[1].Title != "later" || got[2].Title != "sooner" {
		t.Errorf("expected catalog order, got %q then %q", got[1].Title, got[2].Title)
	}
}

func TestBuildLength(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	if got := len(Build(nil, events.SampleEvents(), now, DefaultCap)); got != DefaultCap+1 {
		t.Errorf("expected %d entries, got %d", DefaultCap+1, got)
	}
	if got := len(Build(nil, events.SampleEvents()[:1], now, DefaultCap)); got != 2 {
		t.Errorf("expected 2 entries for a one-event catalog, got %d", got)
	}
	if got := len(Build(nil, nil, now, DefaultCap)); got != 1 {
		t.Errorf("expected only the join entry for empty catalog, got %d", got)
	}
	if got := len(Build(nil, events.SampleEvents(), now, -2)); got != 1 {
		t.Errorf("expected negative cap to be treated as zero, got %d", got)
	}

	first := Build(nil, []models.Event{{Title: "x", Date: "2026-01-01"}}, now, DefaultCap)[0]
	if first.Title != JoinTitle || first.Label != "Dec 1, 2025" {
		t.Errorf("unexpected join entry %+v", first)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	joined := time.Date(2025, 9, 9, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	catalog := events.SampleEvents()

	a := Build(&joined, catalog, now, DefaultCap)
	b := Build(&joined, catalog, now, DefaultCap)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical timelines for identical inputs")
	}
	a[0].Title = "mutated"
	if b[0].Title == "mutated" {
		t.Error("expected each call to return a fresh slice")
	}
}

func TestBuildLabelsAcrossDaylightSaving(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	now := time.Date(2026, 3, 8, 0, 0, 0, 0, ny)
	catalog := []models.Event{
		{Title: "sunday", Date: "2026-03-08"},
		{Title: "monday", Date: "2026-03-09"},
		{Title: "tuesday", Date: "2026-03-10"},
	}

	got := Build(&now, catalog, now, 3)
	labels := []string{got[1].Label, got[2].Label, got[3].Label}
	want := []string{"Today", "Tomorrow", "In 2 days"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected labels %v, got %v", want, labels)
	}
}

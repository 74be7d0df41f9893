package events

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/timemath"
	"gopkg.in/yaml.v3"
)

// Manifest is the parsed events.yaml file that seeds the catalog.
// Event order in the file is catalog order.
type Manifest struct {
	Events []models.Event `yaml:"events"`
}

// LoadManifest reads and strictly parses a catalog manifest.
// Unknown YAML keys are rejected so typos surface at sync time.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse catalog manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	for i := range m.Events {
		m.Events[i].Position = i
	}
	return &m, nil
}

// Validate checks required fields, formats and ID uniqueness.
func (m *Manifest) Validate() error {
	seen := make(map[uint]bool, len(m.Events))
	for i, e := range m.Events {
		if e.ID == 0 {
			return fmt.Errorf("catalog event %d missing required field: id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("catalog event %d: duplicate id %d", i, e.ID)
		}
		seen[e.ID] = true

		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("catalog event %d missing required field: title", e.ID)
		}
		if _, err := timemath.ParseInstant(e.Date, e.Time, time.UTC); err != nil {
			return fmt.Errorf("catalog event %d has invalid date/time: %w", e.ID, err)
		}
		if e.Attendees < 0 {
			return fmt.Errorf("catalog event %d has negative attendees: %d", e.ID, e.Attendees)
		}
	}
	return nil
}

// Package preferences persists the member's display preferences.
package preferences

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jimdaga/chapter-dash/internal/kv"
)

// Theme is the persisted light/dark display preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeKey is the store key holding the theme
const ThemeKey = "theme"

// ParseTheme maps a stored value to a Theme. Anything other than "dark" is light.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggled returns the opposite theme
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeStore reads and writes the theme through a kv.Store
type ThemeStore struct {
	store kv.Store
}

// NewThemeStore creates a ThemeStore backed by store
func NewThemeStore(store kv.Store) *ThemeStore {
	return &ThemeStore{store: store}
}

// Load returns the stored theme. A missing value or a store failure yields light.
func (s *ThemeStore) Load(ctx context.Context) Theme {
	v, ok, err := s.store.Get(ctx, ThemeKey)
	if err != nil {
		slog.Warn("Failed to load theme preference, using light", "error", err)
		return ThemeLight
	}
	if !ok {
		return ThemeLight
	}
	return ParseTheme(v)
}

// Save persists theme
func (s *ThemeStore) Save(ctx context.Context, theme Theme) error {
	if err := s.store.Set(ctx, ThemeKey, string(ParseTheme(string(theme)))); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Toggle flips the stored theme and returns the new value
func (s *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := s.Load(ctx).Toggled()
	if err := s.Save(ctx, next); err != nil {
		return s.Load(ctx), err
	}
	return next, nil
}

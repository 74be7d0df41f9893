package kv

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "theme"); ok || err != nil {
		t.Errorf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok, err := s.Get(ctx, "theme")
	if err != nil || !ok || v != "dark" {
		t.Errorf("expected dark, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Remove(ctx, "theme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "theme"); ok {
		t.Error("expected key to be removed")
	}

	if err := s.Remove(ctx, "never-set"); err != nil {
		t.Errorf("expected removing a missing key to succeed, got %v", err)
	}
}

func TestRedisStoreKey(t *testing.T) {
	s := NewRedisStore(nil, "prefs:ada@example.com:")
	if got := s.Key("theme"); got != "prefs:ada@example.com:theme" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestRedisStoreWithPrefix(t *testing.T) {
	s := NewRedisStore(nil, "chapterdash:").WithPrefix("prefs:ada@example.com:")
	if got := s.Key("theme"); got != "chapterdash:prefs:ada@example.com:theme" {
		t.Errorf("unexpected key %q", got)
	}
}

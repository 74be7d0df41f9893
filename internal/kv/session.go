package kv

import (
	"context"
	"fmt"

	"github.com/gin-contrib/sessions"
)

// SessionStore adapts a gin-contrib session to Store. Every write saves the
// session so the cookie is updated on the current response.
type SessionStore struct {
	session sessions.Session
}

// NewSessionStore wraps the request's session
func NewSessionStore(session sessions.Session) *SessionStore {
	return &SessionStore{session: session}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.session.Get(key).(string)
	if !ok {
		return "", false, nil
	}
	return v, true, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	s.session.Set(key, value)
	if err := s.session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, key string) error {
	s.session.Delete(key)
	if err := s.session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Package session resolves the signed-in member from the session store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/models"
)

// Store keys
const (
	CurrentKey  = "acm_current"
	AccountsKey = "acm_accounts"
)

// ErrNoSession means there is no signed-in member: no identity in the session,
// no matching account, or unreadable stored account data. Callers redirect to sign-in.
var ErrNoSession = errors.New("no active session")

// ErrInvalidIdentity is returned when an account would be recorded without an email
var ErrInvalidIdentity = errors.New("account email is required")

// Directory finds and records member accounts by identity (email).
// FindAccount returns nil, nil when there is no such account.
type Directory interface {
	FindAccount(ctx context.Context, identity string) (*models.Account, error)
	UpsertAccount(ctx context.Context, email, displayName string, now time.Time) (*models.Account, error)
}

// Lookup resolves the current account from a session store and a directory
type Lookup struct {
	sessions kv.Store
	accounts Directory
}

// NewLookup creates a Lookup
func NewLookup(sessions kv.Store, accounts Directory) *Lookup {
	return &Lookup{sessions: sessions, accounts: accounts}
}

// CurrentIdentity returns the identity stored in the session, if any
func (l *Lookup) CurrentIdentity(ctx context.Context) (string, bool) {
	return IdentityFrom(ctx, l.sessions)
}

// IdentityFrom reads the session identity from store. Read failures count as no identity.
func IdentityFrom(ctx context.Context, store kv.Store) (string, bool) {
	v, ok, err := store.Get(ctx, CurrentKey)
	if err != nil || !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// FindAccount looks an identity up in the directory
func (l *Lookup) FindAccount(ctx context.Context, identity string) (*models.Account, error) {
	return l.accounts.FindAccount(ctx, identity)
}

// CurrentAccount returns the signed-in member's account or ErrNoSession.
// Directory failures other than "not found" are returned wrapped.
func (l *Lookup) CurrentAccount(ctx context.Context) (*models.Account, error) {
	identity, ok := l.CurrentIdentity(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	acct, err := l.accounts.FindAccount(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if acct == nil {
		return nil, ErrNoSession
	}
	return acct, nil
}

// SignIn records identity as the current member
func (l *Lookup) SignIn(ctx context.Context, identity string) error {
	return l.sessions.Set(ctx, CurrentKey, strings.TrimSpace(identity))
}

// SignOut clears the current member
func (l *Lookup) SignOut(ctx context.Context) error {
	return l.sessions.Remove(ctx, CurrentKey)
}

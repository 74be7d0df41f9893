package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/models"
)

func newLookup(t *testing.T) (*Lookup, *KVDirectory, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	dir, err := NewKVDirectory(store)
	if err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	return NewLookup(store, dir), dir, store
}

func TestCurrentAccountNoIdentity(t *testing.T) {
	lookup, _, _ := newLookup(t)

	if _, err := lookup.CurrentAccount(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestCurrentAccountCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	lookup, _, store := newLookup(t)

	store.Set(ctx, AccountsKey, `[{"email":"Ada@Example.com","displayName":"Ada Lovelace","joinedAt":"2025-11-01T12:00:00.000Z"}]`)
	if err := lookup.SignIn(ctx, "ada@example.COM"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acct, err := lookup.CurrentAccount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.DisplayName != "Ada Lovelace" {
		t.Errorf("expected Ada Lovelace, got %q", acct.DisplayName)
	}
	if acct.JoinedAt == nil || !acct.JoinedAt.Equal(time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected joinedAt %v", acct.JoinedAt)
	}
}

func TestCurrentAccountUnknownIdentity(t *testing.T) {
	ctx := context.Background()
	lookup, _, store := newLookup(t)

	store.Set(ctx, AccountsKey, `[{"email":"ada@example.com"}]`)
	lookup.SignIn(ctx, "grace@example.com")

	if _, err := lookup.CurrentAccount(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestCurrentAccountMalformedData(t *testing.T) {
	cases := map[string]string{
		"not json":         `{{{`,
		"not an array":     `{"email":"ada@example.com"}`,
		"missing email":    `[{"displayName":"Ada"}]`,
		"email wrong type": `[{"email":42}]`,
		"bad joinedAt":     `[{"email":"ada@example.com","joinedAt":"last tuesday"}]`,
		"blank email":      `[{"email":"   "}]`,
		"null record":      `[null]`,
	}

	for name, raw := range cases {
		ctx := context.Background()
		lookup, _, store := newLookup(t)
		store.Set(ctx, AccountsKey, raw)
		lookup.SignIn(ctx, "ada@example.com")

		if _, err := lookup.CurrentAccount(ctx); !errors.Is(err, ErrNoSession) {
			t.Errorf("%s: expected ErrNoSession, got %v", name, err)
		}
	}
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	lookup, dir, _ := newLookup(t)

	dir.Put(ctx, []models.Account{{Email: "ada@example.com"}})
	lookup.SignIn(ctx, "ada@example.com")
	if _, err := lookup.CurrentAccount(ctx); err != nil {
		t.Fatalf("expected signed-in account, got %v", err)
	}

	if err := lookup.SignOut(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := lookup.CurrentIdentity(ctx); ok {
		t.Error("expected identity to be cleared")
	}
	if _, err := lookup.CurrentAccount(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after sign out, got %v", err)
	}
}

func TestKVDirectoryUpsert(t *testing.T) {
	ctx := context.Background()
	_, dir, _ := newLookup(t)
	now := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)

	created, err := dir.UpsertAccount(ctx, "grace@example.com", "Grace Hopper", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.JoinedAt == nil || !created.JoinedAt.Equal(now) {
		t.Errorf("expected joinedAt %v, got %v", now, created.JoinedAt)
	}

	later := now.Add(48 * time.Hour)
	updated, err := dir.UpsertAccount(ctx, "GRACE@example.com", "Rear Admiral Hopper", later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DisplayName != "Rear Admiral Hopper" {
		t.Errorf("expected updated name, got %q", updated.DisplayName)
	}
	if !updated.JoinedAt.Equal(now) {
		t.Errorf("expected join date to be kept, got %v", updated.JoinedAt)
	}

	found, err := dir.FindAccount(ctx, "grace@example.com")
	if err != nil || found == nil {
		t.Fatalf("expected account to be found, got %v %v", found, err)
	}
	if found.Email != "grace@example.com" {
		t.Errorf("expected stored email to keep original case, got %q", found.Email)
	}
}

func TestCurrentAccountNullOptionalFields(t *testing.T) {
	ctx := context.Background()
	lookup, _, store := newLookup(t)

	store.Set(ctx, AccountsKey, `[{"email":"ada@example.com","displayName":null,"role":null,"year":null,"joinedAt":null}]`)
	lookup.SignIn(ctx, "ada@example.com")

	acct, err := lookup.CurrentAccount(ctx)
	if err != nil {
		t.Fatalf("expected account with null optional fields, got %v", err)
	}
	if acct.DisplayName != "" || acct.Role != "" || acct.Year != "" || acct.JoinedAt != nil {
		t.Errorf("expected null fields to read as absent, got %+v", acct)
	}
}

func TestCurrentAccountSkipsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	lookup, dir, store := newLookup(t)

	store.Set(ctx, AccountsKey, `[{"email":42},{"email":"grace@example.com","role":"Treasurer"},{"displayName":"no email"}]`)
	lookup.SignIn(ctx, "grace@example.com")

	acct, err := lookup.CurrentAccount(ctx)
	if err != nil {
		t.Fatalf("expected valid record to survive its invalid neighbours, got %v", err)
	}
	if acct.Role != "Treasurer" {
		t.Errorf("expected Treasurer, got %q", acct.Role)
	}

	if found, _ := dir.FindAccount(ctx, "no email"); found != nil {
		t.Errorf("expected record without email to be skipped, got %+v", found)
	}
}

func TestUpsertRejectsBlankEmail(t *testing.T) {
	ctx := context.Background()
	lookup, dir, store := newLookup(t)
	now := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)

	if _, err := dir.UpsertAccount(ctx, "ada@example.com", "Ada", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _, _ := store.Get(ctx, AccountsKey)

	for _, email := range []string{"", "   "} {
		if _, err := dir.UpsertAccount(ctx, email, "", now); !errors.Is(err, ErrInvalidIdentity) {
			t.Errorf("%q: expected ErrInvalidIdentity, got %v", email, err)
		}
	}

	after, _, _ := store.Get(ctx, AccountsKey)
	if before != after {
		t.Errorf("expected stored accounts to be unchanged, got %s", after)
	}

	lookup.SignIn(ctx, "ada@example.com")
	if _, err := lookup.CurrentAccount(ctx); err != nil {
		t.Errorf("expected existing member to stay signed in, got %v", err)
	}
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/kaptinlin/jsonschema"
)

// accountSchema describes one record of the JSON array stored under AccountsKey.
// Optional fields may be absent or null.
const accountSchema = `{
	"type": "object",
	"required": ["email"],
	"properties": {
		"email": {"type": "string", "minLength": 1},
		"displayName": {"type": ["string", "null"]},
		"role": {"type": ["string", "null"]},
		"year": {"type": ["string", "null"]},
		"joinedAt": {"type": ["string", "null"]}
	}
}`

// KVDirectory keeps accounts as a JSON array in a kv.Store.
// Stored data that is not an array is treated as holding no accounts; records
// that fail validation are skipped.
type KVDirectory struct {
	store  kv.Store
	schema *jsonschema.Schema
	mu     sync.Mutex
}

// NewKVDirectory creates a directory over store
func NewKVDirectory(store kv.Store) (*KVDirectory, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(accountSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile accounts schema: %w", err)
	}
	return &KVDirectory{store: store, schema: schema}, nil
}

// FindAccount returns the account whose email matches identity case-insensitively
func (d *KVDirectory) FindAccount(ctx context.Context, identity string) (*models.Account, error) {
	accounts, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].MatchesIdentity(identity) {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// UpsertAccount adds an account or updates the display name of an existing one
func (d *KVDirectory) UpsertAccount(ctx context.Context, email, displayName string, now time.Time) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidIdentity
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if accounts[i].MatchesIdentity(email) {
			if displayName != "" {
				accounts[i].DisplayName = displayName
			}
			if err := d.save(ctx, accounts); err != nil {
				return nil, err
			}
			return &accounts[i], nil
		}
	}

	joined := now
	accounts = append(accounts, models.Account{
		Email:       email,
		DisplayName: displayName,
		JoinedAt:    &joined,
	})
	if err := d.save(ctx, accounts); err != nil {
		return nil, err
	}
	return &accounts[len(accounts)-1], nil
}

// Put stores accounts, replacing whatever was there
func (d *KVDirectory) Put(ctx context.Context, accounts []models.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, accounts)
}

func (d *KVDirectory) load(ctx context.Context) ([]models.Account, error) {
	raw, ok, err := d.store.Get(ctx, AccountsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Warn("Stored accounts are not a JSON array, ignoring", "error", err)
		return nil, nil
	}

	accounts := make([]models.Account, 0, len(records))
	for i, record := range records {
		acct, err := d.decode(record)
		if err != nil {
			slog.Warn("Skipping invalid stored account", "index", i, "error", err)
			continue
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// decode validates one stored record against accountSchema and decodes it
func (d *KVDirectory) decode(record json.RawMessage) (models.Account, error) {
	var acct models.Account

	var generic interface{}
	if err := json.Unmarshal(record, &generic); err != nil {
		return acct, fmt.Errorf("invalid JSON: %w", err)
	}

	result := d.schema.Validate(generic)
	if !result.IsValid() {
		messages := make([]string, 0, len(result.Errors))
		for field, evalErr := range result.Errors {
			messages = append(messages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		sort.Strings(messages)
		return acct, fmt.Errorf("failed validation: %s", strings.Join(messages, "; "))
	}

	if err := json.Unmarshal(record, &acct); err != nil {
		return acct, fmt.Errorf("failed to decode: %w", err)
	}
	if strings.TrimSpace(acct.Email) == "" {
		return acct, fmt.Errorf("email is blank")
	}
	return acct, nil
}

func (d *KVDirectory) save(ctx context.Context, accounts []models.Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := d.store.Set(ctx, AccountsKey, string(data)); err != nil {
		return fmt.Errorf("failed to write accounts: %w", err)
	}
	return nil
}

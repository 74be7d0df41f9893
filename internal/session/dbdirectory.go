package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jimdaga/chapter-dash/internal/models"
	"gorm.io/gorm"
)

// DBDirectory finds accounts in the accounts table
type DBDirectory struct {
	db *gorm.DB
}

// NewDBDirectory creates a database-backed directory
func NewDBDirectory(db *gorm.DB) *DBDirectory {
	return &DBDirectory{db: db}
}

// FindAccount matches identity against email case-insensitively
func (d *DBDirectory) FindAccount(ctx context.Context, identity string) (*models.Account, error) {
	var acct models.Account
	err := d.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(identity)).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &acct, nil
}

// UpsertAccount creates the account on first sign-in or refreshes its name and login time
func (d *DBDirectory) UpsertAccount(ctx context.Context, email, displayName string, now time.Time) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidIdentity
	}

	acct, err := d.FindAccount(ctx, email)
	if err != nil {
		return nil, err
	}

	if acct == nil {
		acct = &models.Account{
			Email:       email,
			DisplayName: displayName,
			JoinedAt:    &now,
			LastLoginAt: &now,
		}
		if err := d.db.WithContext(ctx).Create(acct).Error; err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		return acct, nil
	}

	updates := map[string]interface{}{
		"last_login_at": now,
	}
	if displayName != "" {
		updates["display_name"] = displayName
	}
	if err := d.db.WithContext(ctx).Model(acct).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	acct.LastLoginAt = &now
	if displayName != "" {
		acct.DisplayName = displayName
	}
	return acct, nil
}

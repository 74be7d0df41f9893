package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Account is a member's stored identity and profile record, keyed by email.
// Optional fields use the zero value to mean "absent".
type Account struct {
	gorm.Model  `json:"-"`
	Email       string     `gorm:"uniqueIndex:idx_accounts_email_not_deleted,where:deleted_at IS NULL;not null" json:"email"`
	DisplayName string     `gorm:"not null;default:''" json:"displayName,omitempty"`
	Role        string     `gorm:"not null;default:''" json:"role,omitempty"`
	Year        string     `gorm:"not null;default:''" json:"year,omitempty"`
	JoinedAt    *time.Time `json:"joinedAt,omitempty"`
	LastLoginAt *time.Time `json:"-"`
}

// NameOrEmail returns the display name, falling back to the email address.
func (a Account) NameOrEmail() string {
	if strings.TrimSpace(a.DisplayName) != "" {
		return a.DisplayName
	}
	return a.Email
}

// MatchesIdentity reports whether identity names this account (case-insensitive).
func (a Account) MatchesIdentity(identity string) bool {
	return strings.EqualFold(strings.TrimSpace(a.Email), strings.TrimSpace(identity))
}

// DevEmail identifies the member seeded for local development
const DevEmail = "dev@acm-chapter.local"

// Package profile derives the member header shown at the top of the dashboard.
package profile

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/timemath"
)

const (
	// FallbackInitials is shown when there is no name to derive initials from
	FallbackInitials = "AC"
	// DefaultRole is the label used when an account has neither role nor year
	DefaultRole = "Member"

	maxStreak     = 7
	pointsPerDay  = 10
	welcomeSuffix = "Explore upcoming events, connect with peers, and grow your skills with ACM."
)

// View is the profile view-model handed to the renderer.
type View struct {
	Initials       string `json:"initials"`
	Heading        string `json:"heading"`
	Greeting       string `json:"greeting"`
	WelcomeMessage string `json:"welcome_message"`
	FirstName      string `json:"first_name"`
	Email          string `json:"email"`
	RoleLabel      string `json:"role_label"`
	MembershipDays int    `json:"membership_days"`
	MemberSince    string `json:"member_since"`
	Streak         int    `json:"streak"`
	Points         int    `json:"points"`
}

// InitialsOf returns up to two uppercase initials taken from the first two words of name.
func InitialsOf(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return FallbackInitials
	}

	initials := string(firstRune(parts[0]))
	if len(parts) > 1 {
		initials += string(firstRune(parts[1]))
	}
	return strings.ToUpper(initials)
}

func firstRune(s string) rune {
	for _, r := range s {
		return unicode.ToUpper(r)
	}
	return 0
}

// GreetingFor picks the salutation for a local hour of day.
func GreetingFor(hour int) string {
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// FirstName returns the first whitespace-delimited word of name.
func FirstName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// RoleLabel resolves the role → year → "Member" fallback chain.
func RoleLabel(account models.Account) string {
	if r := strings.TrimSpace(account.Role); r != "" {
		return r
	}
	if y := strings.TrimSpace(account.Year); y != "" {
		return y
	}
	return DefaultRole
}

// MembershipDays counts the calendar days since joining, inclusive of the join day.
// A missing join date counts as joining now.
func MembershipDays(joinedAt *time.Time, now time.Time) int {
	joined := now
	if joinedAt != nil {
		joined = *joinedAt
	}
	days := timemath.DaysBetween(joined, now) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Build derives the profile view-model from an account at the given instant.
// now should already be in the member's display timezone.
func Build(account models.Account, now time.Time) View {
	name := account.NameOrEmail()
	first := FirstName(name)
	greeting := GreetingFor(now.Hour())
	days := MembershipDays(account.JoinedAt, now)

	return View{
		Initials:       InitialsOf(name),
		Heading:        fmt.Sprintf("Welcome, %s!", first),
		Greeting:       greeting,
		WelcomeMessage: fmt.Sprintf("%s! %s", greeting, welcomeSuffix),
		FirstName:      first,
		Email:          account.Email,
		RoleLabel:      RoleLabel(account),
		MembershipDays: days,
		MemberSince:    fmt.Sprintf("%d days", days),
		Streak:         min(days, maxStreak),
		Points:         days * pointsPerDay,
	}
}

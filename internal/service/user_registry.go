package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/courtline/court-booking/internal/domain"
	"github.com/courtline/court-booking/internal/repository"
)

const (
	defaultDisplayName = "Guest"
	maxDisplayNameLen  = 64
)

// UserRegistry creates lightweight user profiles on first reservation.
type UserRegistry struct{}

// NewUserRegistry constructs the registry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{}
}

// Register inserts the user if absent. An existing profile is left untouched.
// users must be bound to the caller's transaction so the profile and the
// booking that references it commit together.
func (r *UserRegistry) Register(ctx context.Context, users repository.UserRepository, userID int64, displayName string, username *string) error {
	user := &domain.User{
		ID:          userID,
		DisplayName: NormalizeDisplayName(displayName),
		Username:    normalizeUsername(username),
	}
	_, err := users.Upsert(ctx, user)
	return err
}

// NormalizeDisplayName trims the name, caps it at 64 runes and substitutes "Guest" for blanks.
func NormalizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultDisplayName
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		name = strings.TrimSpace(string([]rune(name)[:maxDisplayNameLen]))
	}
	return name
}

func normalizeUsername(username *string) *string {
	if username == nil {
		return nil
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(*username), "@")
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package domain

import "github.com/google/uuid"

// User represents a bot user.
type User struct {
	ID           uuid.UUID
	TelegramID   int64
	RegisteredAt int64 // unix timestamp
	Language     string
	IsBanned     bool
	Expectation  Expectation
}

// HasLanguage reports whether the user has completed language onboarding.
func (u *User) HasLanguage() bool {
	return u.Language != ""
}

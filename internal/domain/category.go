package domain

import "github.com/google/uuid"

// Category represents a transaction category owned by a user.
type Category struct {
	ID               uuid.UUID
	Holder           uuid.UUID
	CreatedAt        int64 // unix timestamp
	Icon             string
	Name             string // stored lowercase, single word
	TransactionCount int64
	IsDeleted        bool
	Comment          string
}

// CategoryAlias is a learned synonym for a category name. Unique per
// (holder, alias).
type CategoryAlias struct {
	ID       uuid.UUID
	Holder   uuid.UUID
	Category uuid.UUID
	Alias    string // stored lowercase
}

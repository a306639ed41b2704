package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents a money store owned by a user. CurrentSum is a delta
// accumulator kept separate from InitSum; the displayed balance is the sum
// of both.
type Wallet struct {
	ID               uuid.UUID
	Holder           uuid.UUID
	CreatedAt        int64 // unix timestamp
	Icon             string
	Name             string // stored lowercase
	Currency         string // ISO-like code, e.g. "USD"
	InitSum          decimal.Decimal
	CurrentSum       decimal.Decimal
	TransactionCount int64
	IsDeleted        bool
	Comment          string
}

// Balance is the wallet total shown to the user.
func (w *Wallet) Balance() decimal.Decimal {
	return w.InitSum.Add(w.CurrentSum)
}

// WalletAlias is a learned synonym for a wallet name, confirmed by the user
// after a fuzzy-match prompt. Unique per (holder, alias).
type WalletAlias struct {
	ID     uuid.UUID
	Holder uuid.UUID
	Wallet uuid.UUID
	Alias  string // stored lowercase
}

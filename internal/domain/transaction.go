package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is stored as an int in the database.
type TransactionType int

// Income covers both income and spend; the sign of the sum tells them
// apart (positive = income, negative = expense).
const (
	TypeIncome TransactionType = 1
)

// Transaction is a single signed money movement. It is immutable once
// created; the edit and reschedule flows replace it.
type Transaction struct {
	ID         uuid.UUID
	Holder     uuid.UUID
	Datetime   int64 // unix timestamp in seconds
	Type       TransactionType
	WalletID   uuid.UUID
	CategoryID uuid.UUID
	Sum        decimal.Decimal
	Comment    string
}

// EntityKind distinguishes the two aliasable entity kinds.
type EntityKind string

const (
	KindWallet   EntityKind = "wallet"
	KindCategory EntityKind = "category"
)

package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finbot/internal/domain"
)

// UserRepository defines user data operations.
type UserRepository interface {
	GetByTelegramID(telegramID int64) (*domain.User, error)
	Create(user *domain.User) error
	UpdateLanguage(id uuid.UUID, language string) error
	// UpdateExpectation persists the whole conversation state in one write.
	UpdateExpectation(id uuid.UUID, exp domain.Expectation) error
}

// WalletRepository defines wallet and wallet-alias data operations.
type WalletRepository interface {
	ListByHolder(holder uuid.UUID) ([]domain.Wallet, error)
	ListAllByHolder(holder uuid.UUID) ([]domain.Wallet, error)
	ListPage(holder uuid.UUID, limit, offset int) ([]domain.Wallet, error)
	GetByID(id uuid.UUID) (*domain.Wallet, error)
	CountByHolder(holder uuid.UUID) (int, error)
	CountDeleted(holder uuid.UUID) (int, error)
	NameExists(holder uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	Create(w *domain.Wallet) error
	UpdateFields(id uuid.UUID, name, currency string, initSum decimal.Decimal) error
	SoftDelete(id uuid.UUID) error
	IncrementCounters(id uuid.UUID, delta decimal.Decimal) error
	DecrementCounters(id uuid.UUID, delta decimal.Decimal) error

	FindAliasByText(holder uuid.UUID, alias string) (*domain.WalletAlias, error)
	CreateAlias(a *domain.WalletAlias) error
	DeleteAliasesByWallet(wallet uuid.UUID) error
	DeleteAliasByText(holder uuid.UUID, alias string) error
	ListAliases(wallet uuid.UUID) ([]domain.WalletAlias, error)
}

// CategoryRepository defines category and category-alias data operations.
type CategoryRepository interface {
	ListByHolder(holder uuid.UUID) ([]domain.Category, error)
	GetByID(id uuid.UUID) (*domain.Category, error)
	CountDeleted(holder uuid.UUID) (int, error)
	NameExists(holder uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	Create(c *domain.Category) error
	Rename(id uuid.UUID, name string) error
	SoftDelete(id uuid.UUID) error
	IncrementCounter(id uuid.UUID) error
	DecrementCounter(id uuid.UUID) error

	FindAliasByText(holder uuid.UUID, alias string) (*domain.CategoryAlias, error)
	CreateAlias(a *domain.CategoryAlias) error
	DeleteAliasesByCategory(category uuid.UUID) error
	DeleteAliasByText(holder uuid.UUID, alias string) error
	ListAliases(category uuid.UUID) ([]domain.CategoryAlias, error)
}

// TransactionRepository defines transaction data operations.
type TransactionRepository interface {
	Create(t *domain.Transaction) error
	GetByID(id uuid.UUID) (*domain.Transaction, error)
	Delete(id uuid.UUID) error
	UpdateDatetime(id uuid.UUID, ts int64) error
	ListByWallet(wallet uuid.UUID, limit int) ([]domain.Transaction, error)
	ListByCategory(category uuid.UUID, limit int) ([]domain.Transaction, error)
	ListMonth(holder uuid.UUID, year, month, limit, offset int) ([]domain.Transaction, error)
	CountMonth(holder uuid.UUID, year, month int) (int, error)
	ListSince(holder uuid.UUID, since int64) ([]domain.Transaction, error)
	ListByHolder(holder uuid.UUID) ([]domain.Transaction, error)
}

// Registry bundles all repositories bound to the same database handle,
// either the pool or a single transaction.
type Registry interface {
	Users() UserRepository
	Wallets() WalletRepository
	Categories() CategoryRepository
	Transactions() TransactionRepository
}

// Atomic runs a function with a Registry bound to one database
// transaction. Either every write inside commits or none do.
type Atomic interface {
	ExecTx(fn func(r Registry) error) error
}

// Store is the full persistence surface the services depend on.
type Store interface {
	Registry
	Atomic
}

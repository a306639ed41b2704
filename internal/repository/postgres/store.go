package postgres

import (
	"database/sql"
	"fmt"

	"finbot/internal/repository"
)

// Queryer is the part of database/sql shared by *sql.DB and *sql.Tx.
// Every repository runs against it, so the same code serves both pooled
// queries and queries inside a transaction.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type registry struct {
	q Queryer
}

func (r registry) Users() repository.UserRepository {
	return NewUserRepo(r.q)
}

func (r registry) Wallets() repository.WalletRepository {
	return NewWalletRepo(r.q)
}

func (r registry) Categories() repository.CategoryRepository {
	return NewCategoryRepo(r.q)
}

func (r registry) Transactions() repository.TransactionRepository {
	return NewTransactionRepo(r.q)
}

// Store implements repository.Store over PostgreSQL.
type Store struct {
	registry
	db *sql.DB
}

// NewStore creates a Store on top of an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{registry: registry{q: db}, db: db}
}

// ExecTx runs fn with a Registry bound to a single database transaction.
// The transaction commits only if fn returns nil.
func (s *Store) ExecTx(fn func(r repository.Registry) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(registry{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

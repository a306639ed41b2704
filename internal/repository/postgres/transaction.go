package postgres

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"finbot/internal/domain"
)

// TransactionRepo implements repository.TransactionRepository.
type TransactionRepo struct {
	q Queryer
}

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(q Queryer) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, holder, datetime, type, wallet_id,
	category_id, sum, COALESCE(comment, '')`

func scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.Holder, &t.Datetime, &t.Type, &t.WalletID,
		&t.CategoryID, &t.Sum, &t.Comment)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new transaction row.
func (r *TransactionRepo) Create(t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, holder, datetime, type, wallet_id, category_id, sum, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.Exec(query, t.ID, t.Holder, t.Datetime, t.Type,
		t.WalletID, t.CategoryID, t.Sum, t.Comment)
	return err
}

// GetByID returns a transaction by ID, or nil when no row exists.
func (r *TransactionRepo) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a transaction row. Counter reversal happens in the same
// store transaction at the service layer.
func (r *TransactionRepo) Delete(id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1`
	_, err := r.q.Exec(query, id)
	return err
}

// UpdateDatetime moves a transaction to a new point in time.
func (r *TransactionRepo) UpdateDatetime(id uuid.UUID, ts int64) error {
	query := `UPDATE transactions SET datetime = $2 WHERE id = $1`
	_, err := r.q.Exec(query, id, ts)
	return err
}

// ListByWallet returns the wallet's latest transactions.
func (r *TransactionRepo) ListByWallet(wallet uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY datetime DESC
		LIMIT $2
	`
	return r.queryTransactions(query, wallet, limit)
}

// ListByCategory returns the category's latest transactions.
func (r *TransactionRepo) ListByCategory(category uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE category_id = $1
		ORDER BY datetime DESC
		LIMIT $2
	`
	return r.queryTransactions(query, category, limit)
}

// ListMonth returns one page of the user's transactions within a calendar
// month, newest first.
func (r *TransactionRepo) ListMonth(holder uuid.UUID, year, month, limit, offset int) ([]domain.Transaction, error) {
	from, to := monthBounds(year, month)
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE holder = $1 AND datetime >= $2 AND datetime < $3
		ORDER BY datetime DESC
		LIMIT $4 OFFSET $5
	`
	return r.queryTransactions(query, holder, from, to, limit, offset)
}

// CountMonth counts the user's transactions within a calendar month.
func (r *TransactionRepo) CountMonth(holder uuid.UUID, year, month int) (int, error) {
	from, to := monthBounds(year, month)
	query := `
		SELECT COUNT(*) FROM transactions
		WHERE holder = $1 AND datetime >= $2 AND datetime < $3
	`
	var count int
	err := r.q.QueryRow(query, holder, from, to).Scan(&count)
	return count, err
}

// ListSince returns the user's transactions at or after the timestamp,
// newest first.
func (r *TransactionRepo) ListSince(holder uuid.UUID, since int64) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE holder = $1 AND datetime >= $2
		ORDER BY datetime DESC
	`
	return r.queryTransactions(query, holder, since)
}

// ListByHolder returns every transaction of the user, newest first.
func (r *TransactionRepo) ListByHolder(holder uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE holder = $1
		ORDER BY datetime DESC
	`
	return r.queryTransactions(query, holder)
}

func (r *TransactionRepo) queryTransactions(query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func monthBounds(year, month int) (int64, int64) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from.Unix(), from.AddDate(0, 1, 0).Unix()
}

package postgres

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finbot/internal/domain"
)

// WalletRepo implements repository.WalletRepository.
type WalletRepo struct {
	q Queryer
}

// NewWalletRepo creates a new wallet repository.
func NewWalletRepo(q Queryer) *WalletRepo {
	return &WalletRepo{q: q}
}

const walletColumns = `id, holder, created_at, icon, name, currency,
	init_sum, current_sum, transaction_count, is_deleted, COALESCE(comment, '')`

func scanWallet(row interface{ Scan(...any) error }) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.Holder, &w.CreatedAt, &w.Icon, &w.Name,
		&w.Currency, &w.InitSum, &w.CurrentSum, &w.TransactionCount,
		&w.IsDeleted, &w.Comment)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListByHolder returns all non-deleted wallets of a user, most used first.
func (r *WalletRepo) ListByHolder(holder uuid.UUID) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE holder = $1 AND is_deleted = FALSE
		ORDER BY transaction_count DESC, name ASC
	`
	return r.queryWallets(query, holder)
}

// ListAllByHolder returns every wallet of a user, soft-deleted included.
// Used by the export.
func (r *WalletRepo) ListAllByHolder(holder uuid.UUID) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE holder = $1
		ORDER BY created_at ASC
	`
	return r.queryWallets(query, holder)
}

// ListPage returns one page of the user's non-deleted wallets.
func (r *WalletRepo) ListPage(holder uuid.UUID, limit, offset int) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE holder = $1 AND is_deleted = FALSE
		ORDER BY transaction_count DESC, name ASC
		LIMIT $2 OFFSET $3
	`
	return r.queryWallets(query, holder, limit, offset)
}

func (r *WalletRepo) queryWallets(query string, args ...any) ([]domain.Wallet, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

// GetByID returns a wallet by ID including soft-deleted ones, or nil when
// no row exists.
func (r *WalletRepo) GetByID(id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	w, err := scanWallet(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CountByHolder counts the user's non-deleted wallets.
func (r *WalletRepo) CountByHolder(holder uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM wallets WHERE holder = $1 AND is_deleted = FALSE`
	var count int
	err := r.q.QueryRow(query, holder).Scan(&count)
	return count, err
}

// CountDeleted counts the user's soft-deleted wallets.
func (r *WalletRepo) CountDeleted(holder uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM wallets WHERE holder = $1 AND is_deleted = TRUE`
	var count int
	err := r.q.QueryRow(query, holder).Scan(&count)
	return count, err
}

// NameExists reports whether another non-deleted wallet of the user
// already carries the name.
func (r *WalletRepo) NameExists(holder uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wallets
			WHERE holder = $1 AND name = $2 AND is_deleted = FALSE AND id <> $3
		)
	`
	var exists bool
	err := r.q.QueryRow(query, holder, name, exclude).Scan(&exists)
	return exists, err
}

// Create inserts a new wallet row.
func (r *WalletRepo) Create(w *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, holder, created_at, icon, name, currency,
			init_sum, current_sum, transaction_count, is_deleted, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.q.Exec(query, w.ID, w.Holder, w.CreatedAt, w.Icon, w.Name,
		w.Currency, w.InitSum, w.CurrentSum, w.TransactionCount, w.IsDeleted,
		w.Comment)
	return err
}

// UpdateFields replaces the editable wallet attributes.
func (r *WalletRepo) UpdateFields(id uuid.UUID, name, currency string, initSum decimal.Decimal) error {
	query := `UPDATE wallets SET name = $2, currency = $3, init_sum = $4 WHERE id = $1`
	_, err := r.q.Exec(query, id, name, currency, initSum)
	return err
}

// SoftDelete marks the wallet as deleted, preserving its transactions.
func (r *WalletRepo) SoftDelete(id uuid.UUID) error {
	query := `UPDATE wallets SET is_deleted = TRUE WHERE id = $1`
	_, err := r.q.Exec(query, id)
	return err
}

// IncrementCounters applies a signed delta to current_sum and bumps the
// transaction count.
func (r *WalletRepo) IncrementCounters(id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET current_sum = current_sum + $2, transaction_count = transaction_count + 1
		WHERE id = $1
	`
	_, err := r.q.Exec(query, id, delta)
	return err
}

// DecrementCounters reverses a previously applied delta.
func (r *WalletRepo) DecrementCounters(id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET current_sum = current_sum - $2, transaction_count = transaction_count - 1
		WHERE id = $1
	`
	_, err := r.q.Exec(query, id, delta)
	return err
}

// FindAliasByText finds the user's wallet alias by its exact lowercase
// text. Aliases pointing at soft-deleted wallets do not resolve.
func (r *WalletRepo) FindAliasByText(holder uuid.UUID, alias string) (*domain.WalletAlias, error) {
	query := `
		SELECT a.id, a.holder, a.wallet, a.alias
		FROM wallet_aliases a
		JOIN wallets w ON w.id = a.wallet
		WHERE a.holder = $1 AND a.alias = $2 AND w.is_deleted = FALSE
	`
	var a domain.WalletAlias
	err := r.q.QueryRow(query, holder, alias).Scan(&a.ID, &a.Holder, &a.Wallet, &a.Alias)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAlias inserts a learned alias. Re-confirming the same alias is a
// no-op thanks to the (holder, alias) uniqueness.
func (r *WalletRepo) CreateAlias(a *domain.WalletAlias) error {
	query := `
		INSERT INTO wallet_aliases (id, holder, wallet, alias)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (holder, alias) DO NOTHING
	`
	_, err := r.q.Exec(query, a.ID, a.Holder, a.Wallet, a.Alias)
	return err
}

// DeleteAliasesByWallet removes every alias of the given wallet.
func (r *WalletRepo) DeleteAliasesByWallet(wallet uuid.UUID) error {
	query := `DELETE FROM wallet_aliases WHERE wallet = $1`
	_, err := r.q.Exec(query, wallet)
	return err
}

// DeleteAliasByText removes the user's alias with the given text, if any.
// Called when a real wallet takes the aliased name.
func (r *WalletRepo) DeleteAliasByText(holder uuid.UUID, alias string) error {
	query := `DELETE FROM wallet_aliases WHERE holder = $1 AND alias = $2`
	_, err := r.q.Exec(query, holder, alias)
	return err
}

// ListAliases returns all aliases of a wallet.
func (r *WalletRepo) ListAliases(wallet uuid.UUID) ([]domain.WalletAlias, error) {
	query := `SELECT id, holder, wallet, alias FROM wallet_aliases WHERE wallet = $1 ORDER BY alias`
	rows, err := r.q.Query(query, wallet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []domain.WalletAlias
	for rows.Next() {
		var a domain.WalletAlias
		if err := rows.Scan(&a.ID, &a.Holder, &a.Wallet, &a.Alias); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

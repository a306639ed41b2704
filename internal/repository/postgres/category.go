package postgres

import (
	"database/sql"

	"github.com/google/uuid"

	"finbot/internal/domain"
)

// CategoryRepo implements repository.CategoryRepository.
type CategoryRepo struct {
	q Queryer
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(q Queryer) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, holder, created_at, icon, name,
	transaction_count, is_deleted, COALESCE(comment, '')`

func scanCategory(row interface{ Scan(...any) error }) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Holder, &c.CreatedAt, &c.Icon, &c.Name,
		&c.TransactionCount, &c.IsDeleted, &c.Comment)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByHolder returns all non-deleted categories of a user, most used
// first.
func (r *CategoryRepo) ListByHolder(holder uuid.UUID) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE holder = $1 AND is_deleted = FALSE
		ORDER BY transaction_count DESC, name ASC
	`
	rows, err := r.q.Query(query, holder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetByID returns a category by ID including soft-deleted ones, or nil
// when no row exists.
func (r *CategoryRepo) GetByID(id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c, err := scanCategory(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CountDeleted counts the user's soft-deleted categories.
func (r *CategoryRepo) CountDeleted(holder uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM categories WHERE holder = $1 AND is_deleted = TRUE`
	var count int
	err := r.q.QueryRow(query, holder).Scan(&count)
	return count, err
}

// NameExists reports whether another non-deleted category of the user
// already carries the name.
func (r *CategoryRepo) NameExists(holder uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE holder = $1 AND name = $2 AND is_deleted = FALSE AND id <> $3
		)
	`
	var exists bool
	err := r.q.QueryRow(query, holder, name, exclude).Scan(&exists)
	return exists, err
}

// Create inserts a new category row.
func (r *CategoryRepo) Create(c *domain.Category) error {
	query := `
		INSERT INTO categories (id, holder, created_at, icon, name,
			transaction_count, is_deleted, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.Exec(query, c.ID, c.Holder, c.CreatedAt, c.Icon, c.Name,
		c.TransactionCount, c.IsDeleted, c.Comment)
	return err
}

// Rename replaces the category name.
func (r *CategoryRepo) Rename(id uuid.UUID, name string) error {
	query := `UPDATE categories SET name = $2 WHERE id = $1`
	_, err := r.q.Exec(query, id, name)
	return err
}

// SoftDelete marks the category as deleted, preserving its transactions.
func (r *CategoryRepo) SoftDelete(id uuid.UUID) error {
	query := `UPDATE categories SET is_deleted = TRUE WHERE id = $1`
	_, err := r.q.Exec(query, id)
	return err
}

// IncrementCounter bumps the category's transaction count.
func (r *CategoryRepo) IncrementCounter(id uuid.UUID) error {
	query := `UPDATE categories SET transaction_count = transaction_count + 1 WHERE id = $1`
	_, err := r.q.Exec(query, id)
	return err
}

// DecrementCounter reverses a counted transaction.
func (r *CategoryRepo) DecrementCounter(id uuid.UUID) error {
	query := `UPDATE categories SET transaction_count = transaction_count - 1 WHERE id = $1`
	_, err := r.q.Exec(query, id)
	return err
}

// FindAliasByText finds the user's category alias by its exact lowercase
// text. Aliases pointing at soft-deleted categories do not resolve.
func (r *CategoryRepo) FindAliasByText(holder uuid.UUID, alias string) (*domain.CategoryAlias, error) {
	query := `
		SELECT a.id, a.holder, a.category, a.alias
		FROM category_aliases a
		JOIN categories c ON c.id = a.category
		WHERE a.holder = $1 AND a.alias = $2 AND c.is_deleted = FALSE
	`
	var a domain.CategoryAlias
	err := r.q.QueryRow(query, holder, alias).Scan(&a.ID, &a.Holder, &a.Category, &a.Alias)
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
func (r *CategoryRepo) CreateAlias(a *domain.CategoryAlias) error {
	query := `
		INSERT INTO category_aliases (id, holder, category, alias)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (holder, alias) DO NOTHING
	`
	_, err := r.q.Exec(query, a.ID, a.Holder, a.Category, a.Alias)
	return err
}

// DeleteAliasesByCategory removes every alias of the given category.
func (r *CategoryRepo) DeleteAliasesByCategory(category uuid.UUID) error {
	query := `DELETE FROM category_aliases WHERE category = $1`
	_, err := r.q.Exec(query, category)
	return err
}

// DeleteAliasByText removes the user's alias with the given text, if any.
func (r *CategoryRepo) DeleteAliasByText(holder uuid.UUID, alias string) error {
	query := `DELETE FROM category_aliases WHERE holder = $1 AND alias = $2`
	_, err := r.q.Exec(query, holder, alias)
	return err
}

// ListAliases returns all aliases of a category.
func (r *CategoryRepo) ListAliases(category uuid.UUID) ([]domain.CategoryAlias, error) {
	query := `SELECT id, holder, category, alias FROM category_aliases WHERE category = $1 ORDER BY alias`
	rows, err := r.q.Query(query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []domain.CategoryAlias
	for rows.Next() {
		var a domain.CategoryAlias
		if err := rows.Scan(&a.ID, &a.Holder, &a.Category, &a.Alias); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

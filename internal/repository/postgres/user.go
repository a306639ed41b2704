package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"finbot/internal/domain"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	q Queryer
}

// NewUserRepo creates a new user repository.
func NewUserRepo(q Queryer) *UserRepo {
	return &UserRepo{q: q}
}

// GetByTelegramID returns the user with the given external chat identity,
// or nil if no such user exists.
func (r *UserRepo) GetByTelegramID(telegramID int64) (*domain.User, error) {
	query := `
		SELECT id, telegram_id, registered_at, language, is_banned, expectation
		FROM users WHERE telegram_id = $1
	`

	var u domain.User
	var language sql.NullString
	var expectation []byte
	err := r.q.QueryRow(query, telegramID).Scan(
		&u.ID, &u.TelegramID, &u.RegisteredAt, &language, &u.IsBanned, &expectation,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if language.Valid {
		u.Language = language.String
	}

	u.Expectation = domain.NewExpectation()
	if len(expectation) > 0 {
		if err := json.Unmarshal(expectation, &u.Expectation); err != nil {
			return nil, fmt.Errorf("decode expectation: %w", err)
		}
		if u.Expectation.Expect.Type == "" {
			u.Expectation.Expect.Type = domain.ExpectNone
		}
	}

	return &u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(user *domain.User) error {
	exp, err := json.Marshal(user.Expectation)
	if err != nil {
		return fmt.Errorf("encode expectation: %w", err)
	}

	query := `
		INSERT INTO users (id, telegram_id, registered_at, language, is_banned, expectation)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var language any
	if user.Language != "" {
		language = user.Language
	}
	_, err = r.q.Exec(query, user.ID, user.TelegramID, user.RegisteredAt,
		language, user.IsBanned, exp)
	return err
}

// UpdateLanguage stores the user's language preference.
func (r *UserRepo) UpdateLanguage(id uuid.UUID, language string) error {
	query := `UPDATE users SET language = $2 WHERE id = $1`
	_, err := r.q.Exec(query, id, language)
	return err
}

// UpdateExpectation persists the user's whole conversation state.
func (r *UserRepo) UpdateExpectation(id uuid.UUID, exp domain.Expectation) error {
	raw, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("encode expectation: %w", err)
	}

	query := `UPDATE users SET expectation = $2 WHERE id = $1`
	_, err = r.q.Exec(query, id, raw)
	return err
}

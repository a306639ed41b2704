package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finbot/internal/domain"
)

func TestMonthBounds(t *testing.T) {
	from, to := monthBounds(2026, 9)

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix(), from)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Unix(), to)

	// December rolls into January of the next year.
	from, to = monthBounds(2026, 12)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC).Unix(), from)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), to)
}

func TestTransactionRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	tx := &domain.Transaction{
		ID:         uuid.New(),
		Holder:     uuid.New(),
		Datetime:   1_700_000_000,
		Type:       domain.TypeIncome,
		WalletID:   uuid.New(),
		CategoryID: uuid.New(),
		Sum:        decimal.RequireFromString("-12.50"),
		Comment:    "lunch",
	}

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.Holder, tx.Datetime, tx.Type, tx.WalletID,
			tx.CategoryID, tx.Sum, tx.Comment).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewTransactionRepo(db).Create(tx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CountMonth(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	holder := uuid.New()
	from, to := monthBounds(2026, 9)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions WHERE holder = \\$1 AND datetime >= \\$2 AND datetime < \\$3").
		WithArgs(holder, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := NewTransactionRepo(db).CountMonth(holder, 2026, 9)
	assert.NoError(t, err)
	assert.Equal(t, 17, count)
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "holder", "datetime", "type", "wallet_id", "category_id", "sum", "comment",
		}))

	tx, err := NewTransactionRepo(db).GetByID(id)
	assert.NoError(t, err)
	assert.Nil(t, tx)
}

func TestTransactionRepo_ListMonth(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	holder := uuid.New()
	from, to := monthBounds(2026, 9)

	rows := sqlmock.NewRows([]string{
		"id", "holder", "datetime", "type", "wallet_id", "category_id", "sum", "comment",
	}).
		AddRow(uuid.New(), holder, int64(1_788_000_000), 1, uuid.New(), uuid.New(), "-5", "").
		AddRow(uuid.New(), holder, int64(1_787_000_000), 1, uuid.New(), uuid.New(), "+20", "bonus")

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE holder = \\$1 AND datetime >= \\$2 AND datetime < \\$3").
		WithArgs(holder, from, to, 10, 0).
		WillReturnRows(rows)

	list, err := NewTransactionRepo(db).ListMonth(holder, 2026, 9, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "bonus", list[1].Comment)
	assert.True(t, list[0].Sum.Equal(decimal.RequireFromString("-5")))
}

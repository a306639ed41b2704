package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

const transactionsPerPage = 10

// TransactionRow is a transaction joined with the names needed to display
// it.
type TransactionRow struct {
	Transaction    domain.Transaction
	WalletName     string
	WalletCurrency string
	CategoryName   string
}

// TransactionPage is one month-scoped page of the transactions menu.
type TransactionPage struct {
	Rows      []TransactionRow
	Page      int
	PageCount int
	Year      int
	Month     int
	Total     int
}

// TransactionService serves the transactions menu and export.
type TransactionService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(store repository.Store, logger *zap.Logger) *TransactionService {
	return &TransactionService{store: store, logger: logger}
}

// Get loads a transaction, enforcing ownership.
func (s *TransactionService) Get(user *domain.User, id uuid.UUID) (*domain.Transaction, error) {
	t, err := s.store.Transactions().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if t == nil || t.Holder != user.ID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// ViewRow loads one transaction joined with its display names, enforcing
// ownership.
func (s *TransactionService) ViewRow(user *domain.User, id uuid.UUID) (TransactionRow, error) {
	t, err := s.Get(user, id)
	if err != nil {
		return TransactionRow{}, err
	}
	rows, err := s.join([]domain.Transaction{*t})
	if err != nil {
		return TransactionRow{}, err
	}
	return rows[0], nil
}

// ListMonth returns one page of the user's transactions for a calendar
// month, newest first, joined with wallet and category names.
func (s *TransactionService) ListMonth(user *domain.User, year, month, page int) (TransactionPage, error) {
	total, err := s.store.Transactions().CountMonth(user.ID, year, month)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}

	pageCount := (total + transactionsPerPage - 1) / transactionsPerPage
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	transactions, err := s.store.Transactions().ListMonth(user.ID, year, month,
		transactionsPerPage, (page-1)*transactionsPerPage)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}

	rows, err := s.join(transactions)
	if err != nil {
		return TransactionPage{}, err
	}

	return TransactionPage{
		Rows:      rows,
		Page:      page,
		PageCount: pageCount,
		Year:      year,
		Month:     month,
		Total:     total,
	}, nil
}

// join resolves wallet and category names for display, caching lookups
// within the call.
func (s *TransactionService) join(transactions []domain.Transaction) ([]TransactionRow, error) {
	wallets := map[uuid.UUID]*domain.Wallet{}
	categories := map[uuid.UUID]*domain.Category{}

	rows := make([]TransactionRow, 0, len(transactions))
	for _, t := range transactions {
		row := TransactionRow{Transaction: t}

		w, ok := wallets[t.WalletID]
		if !ok {
			var err error
			w, err = s.store.Wallets().GetByID(t.WalletID)
			if err != nil {
				return nil, fmt.Errorf("load wallet: %w", err)
			}
			wallets[t.WalletID] = w
		}
		if w != nil {
			row.WalletName = w.Name
			row.WalletCurrency = w.Currency
		}

		c, ok := categories[t.CategoryID]
		if !ok {
			var err error
			c, err = s.store.Categories().GetByID(t.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("load category: %w", err)
			}
			categories[t.CategoryID] = c
		}
		if c != nil {
			row.CategoryName = c.Name
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// ExportCSV renders the user's full transaction log as a CSV document.
func (s *TransactionService) ExportCSV(user *domain.User) ([]byte, string, error) {
	transactions, err := s.store.Transactions().ListByHolder(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}
	rows, err := s.join(transactions)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"datetime", "sum", "currency", "category", "wallet", "comment"}
	if err := w.Write(header); err != nil {
		return nil, "", err
	}

	for _, row := range rows {
		record := []string{
			time.Unix(row.Transaction.Datetime, 0).UTC().Format(time.RFC3339),
			row.Transaction.Sum.String(),
			row.WalletCurrency,
			row.CategoryName,
			row.WalletName,
			row.Transaction.Comment,
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("export_transactions_%s.csv", time.Now().UTC().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

const (
	walletsPerPage   = 20
	walletIcon       = "👛"
	viewItemsShown   = 5
	viewAliasesShown = 5
)

// WalletService handles wallet CRUD with the alias-consistency rules: a
// wallet name and an alias with the same text may not coexist, and soft
// deleting a wallet cascades removal of its aliases.
type WalletService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(store repository.Store, logger *zap.Logger) *WalletService {
	return &WalletService{store: store, logger: logger}
}

// WalletPage is one page of the wallet menu.
type WalletPage struct {
	Wallets      []domain.Wallet
	Page         int
	PageCount    int
	Total        int
	DeletedCount int
}

// List returns one page of the user's wallets, most used first. The page
// number is clamped to the valid range.
func (s *WalletService) List(user *domain.User, page int) (WalletPage, error) {
	total, err := s.store.Wallets().CountByHolder(user.ID)
	if err != nil {
		return WalletPage{}, fmt.Errorf("count wallets: %w", err)
	}
	deleted, err := s.store.Wallets().CountDeleted(user.ID)
	if err != nil {
		return WalletPage{}, fmt.Errorf("count deleted wallets: %w", err)
	}

	pageCount := (total + walletsPerPage - 1) / walletsPerPage
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	wallets, err := s.store.Wallets().ListPage(user.ID, walletsPerPage, (page-1)*walletsPerPage)
	if err != nil {
		return WalletPage{}, fmt.Errorf("list wallets: %w", err)
	}

	return WalletPage{
		Wallets:      wallets,
		Page:         page,
		PageCount:    pageCount,
		Total:        total,
		DeletedCount: deleted,
	}, nil
}

// CheckOwnership loads a wallet and verifies it belongs to the user and is
// not soft deleted. "Found but deleted" and "not found" are distinct
// failures.
func (s *WalletService) CheckOwnership(user *domain.User, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.store.Wallets().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	if wallet == nil || wallet.Holder != user.ID {
		return nil, domain.ErrNotFound
	}
	if wallet.IsDeleted {
		return nil, domain.ErrDeleted
	}
	return wallet, nil
}

// Create validates and inserts a new wallet. An alias that collides with
// the chosen name is deleted in the same store transaction: an alias and a
// same-named real wallet may not coexist.
func (s *WalletService) Create(user *domain.User, name, currency string, initSum decimal.Decimal) (*domain.Wallet, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.ErrEmptyMessage
	}
	if !ValidCurrency(currency) {
		return nil, domain.ErrUnsupportedCurrency
	}

	taken, err := s.store.Wallets().NameExists(user.ID, name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check wallet name: %w", err)
	}
	if taken {
		return nil, domain.ErrNameTaken
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		Holder:    user.ID,
		CreatedAt: time.Now().Unix(),
		Icon:      walletIcon,
		Name:      name,
		Currency:  strings.ToUpper(currency),
		InitSum:   initSum,
	}

	err = s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Wallets().DeleteAliasByText(user.ID, name); err != nil {
			return fmt.Errorf("drop colliding alias: %w", err)
		}
		if err := r.Wallets().Create(wallet); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet created",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("name", name),
		zap.String("currency", wallet.Currency),
	)
	return wallet, nil
}

// Edit replaces the wallet's name, currency and initial sum. All aliases
// of the wallet are dropped (they may now contradict the new name), along
// with any alias colliding with the new name.
func (s *WalletService) Edit(user *domain.User, id uuid.UUID, name, currency string, initSum decimal.Decimal) (*domain.Wallet, error) {
	wallet, err := s.CheckOwnership(user, id)
	if err != nil {
		return nil, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.ErrEmptyMessage
	}
	if !ValidCurrency(currency) {
		return nil, domain.ErrUnsupportedCurrency
	}

	taken, err := s.store.Wallets().NameExists(user.ID, name, id)
	if err != nil {
		return nil, fmt.Errorf("check wallet name: %w", err)
	}
	if taken {
		return nil, domain.ErrNameTaken
	}

	err = s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Wallets().DeleteAliasByText(user.ID, name); err != nil {
			return fmt.Errorf("drop colliding alias: %w", err)
		}
		if err := r.Wallets().DeleteAliasesByWallet(id); err != nil {
			return fmt.Errorf("drop wallet aliases: %w", err)
		}
		if err := r.Wallets().UpdateFields(id, name, strings.ToUpper(currency), initSum); err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	wallet.Name = name
	wallet.Currency = strings.ToUpper(currency)
	wallet.InitSum = initSum
	return wallet, nil
}

// Delete soft-deletes the wallet and cascades alias removal in the same
// store transaction. Historical transactions stay untouched.
func (s *WalletService) Delete(user *domain.User, id uuid.UUID) error {
	if _, err := s.CheckOwnership(user, id); err != nil {
		return err
	}

	err := s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Wallets().SoftDelete(id); err != nil {
			return fmt.Errorf("soft delete wallet: %w", err)
		}
		if err := r.Wallets().DeleteAliasesByWallet(id); err != nil {
			return fmt.Errorf("drop wallet aliases: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("wallet deleted",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("wallet_id", id.String()),
	)
	return nil
}

// WalletView is the data behind the per-wallet view menu.
type WalletView struct {
	Wallet              domain.Wallet
	Transactions        []TransactionRow
	TransactionsSkipped int
	Aliases             []string
	AliasesSkipped      int
}

// View loads the wallet together with its latest transactions and aliases.
func (s *WalletService) View(user *domain.User, id uuid.UUID) (WalletView, error) {
	wallet, err := s.CheckOwnership(user, id)
	if err != nil {
		return WalletView{}, err
	}

	transactions, err := s.store.Transactions().ListByWallet(id, viewItemsShown+1)
	if err != nil {
		return WalletView{}, fmt.Errorf("list wallet transactions: %w", err)
	}
	skippedTx := 0
	if len(transactions) > viewItemsShown {
		skippedTx = int(wallet.TransactionCount) - viewItemsShown
		transactions = transactions[:viewItemsShown]
	}

	rows := make([]TransactionRow, 0, len(transactions))
	for _, t := range transactions {
		row := TransactionRow{Transaction: t, WalletName: wallet.Name, WalletCurrency: wallet.Currency}
		category, err := s.store.Categories().GetByID(t.CategoryID)
		if err != nil {
			return WalletView{}, fmt.Errorf("load category: %w", err)
		}
		if category != nil {
			row.CategoryName = category.Name
		}
		rows = append(rows, row)
	}

	aliases, err := s.store.Wallets().ListAliases(id)
	if err != nil {
		return WalletView{}, fmt.Errorf("list wallet aliases: %w", err)
	}
	skippedAliases := 0
	if len(aliases) > viewAliasesShown {
		skippedAliases = len(aliases) - viewAliasesShown
		aliases = aliases[:viewAliasesShown]
	}
	aliasTexts := make([]string, len(aliases))
	for i, a := range aliases {
		aliasTexts[i] = a.Alias
	}

	return WalletView{
		Wallet:              *wallet,
		Transactions:        rows,
		TransactionsSkipped: skippedTx,
		Aliases:             aliasTexts,
		AliasesSkipped:      skippedAliases,
	}, nil
}

// ExportCSV renders all of the user's wallets, deleted included, as a CSV
// document.
func (s *WalletService) ExportCSV(user *domain.User) ([]byte, string, error) {
	wallets, err := s.store.Wallets().ListAllByHolder(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("list wallets: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"created_at", "name", "currency", "init_sum",
		"current_sum", "transaction_count", "is_deleted"}
	if err := w.Write(header); err != nil {
		return nil, "", err
	}

	for _, wallet := range wallets {
		record := []string{
			time.Unix(wallet.CreatedAt, 0).UTC().Format(time.RFC3339),
			wallet.Name,
			wallet.Currency,
			wallet.InitSum.String(),
			wallet.CurrentSum.String(),
			strconv.FormatInt(wallet.TransactionCount, 10),
			strconv.FormatBool(wallet.IsDeleted),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("export_wallets_%s.csv", time.Now().UTC().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

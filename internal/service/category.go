package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

const categoryIcon = "🏷"

// CategoryService handles category CRUD with the same alias-consistency
// rules as wallets. Category names are additionally restricted to a single
// word.
type CategoryService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store repository.Store, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

// CategoryList is the data behind the categories menu.
type CategoryList struct {
	Categories   []domain.Category
	DeletedCount int
}

// List returns all of the user's categories, most used first.
func (s *CategoryService) List(user *domain.User) (CategoryList, error) {
	categories, err := s.store.Categories().ListByHolder(user.ID)
	if err != nil {
		return CategoryList{}, fmt.Errorf("list categories: %w", err)
	}
	deleted, err := s.store.Categories().CountDeleted(user.ID)
	if err != nil {
		return CategoryList{}, fmt.Errorf("count deleted categories: %w", err)
	}
	return CategoryList{Categories: categories, DeletedCount: deleted}, nil
}

// CheckOwnership loads a category and verifies it belongs to the user and
// is not soft deleted.
func (s *CategoryService) CheckOwnership(user *domain.User, id uuid.UUID) (*domain.Category, error) {
	category, err := s.store.Categories().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if category == nil || category.Holder != user.ID {
		return nil, domain.ErrNotFound
	}
	if category.IsDeleted {
		return nil, domain.ErrDeleted
	}
	return category, nil
}

func validCategoryName(name string) error {
	if name == "" {
		return domain.ErrEmptyMessage
	}
	if strings.ContainsAny(name, " \t\n") {
		return domain.ErrMultiWordName
	}
	return nil
}

// Create validates and inserts a new category, dropping any alias that
// collides with the chosen name in the same store transaction.
func (s *CategoryService) Create(user *domain.User, name string) (*domain.Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if err := validCategoryName(name); err != nil {
		return nil, err
	}

	taken, err := s.store.Categories().NameExists(user.ID, name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, domain.ErrNameTaken
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Holder:    user.ID,
		CreatedAt: time.Now().Unix(),
		Icon:      categoryIcon,
		Name:      name,
	}

	err = s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Categories().DeleteAliasByText(user.ID, name); err != nil {
			return fmt.Errorf("drop colliding alias: %w", err)
		}
		if err := r.Categories().Create(category); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("name", name),
	)
	return category, nil
}

// Rename changes the category name, dropping the category's aliases and
// any alias colliding with the new name.
func (s *CategoryService) Rename(user *domain.User, id uuid.UUID, name string) (*domain.Category, error) {
	category, err := s.CheckOwnership(user, id)
	if err != nil {
		return nil, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if err := validCategoryName(name); err != nil {
		return nil, err
	}

	taken, err := s.store.Categories().NameExists(user.ID, name, id)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, domain.ErrNameTaken
	}

	err = s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Categories().DeleteAliasByText(user.ID, name); err != nil {
			return fmt.Errorf("drop colliding alias: %w", err)
		}
		if err := r.Categories().DeleteAliasesByCategory(id); err != nil {
			return fmt.Errorf("drop category aliases: %w", err)
		}
		if err := r.Categories().Rename(id, name); err != nil {
			return fmt.Errorf("rename category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	category.Name = name
	return category, nil
}

// Delete soft-deletes the category and cascades alias removal in the same
// store transaction.
func (s *CategoryService) Delete(user *domain.User, id uuid.UUID) error {
	if _, err := s.CheckOwnership(user, id); err != nil {
		return err
	}

	err := s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Categories().SoftDelete(id); err != nil {
			return fmt.Errorf("soft delete category: %w", err)
		}
		if err := r.Categories().DeleteAliasesByCategory(id); err != nil {
			return fmt.Errorf("drop category aliases: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("category deleted",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("category_id", id.String()),
	)
	return nil
}

// CategoryView is the data behind the per-category view menu.
type CategoryView struct {
	Category            domain.Category
	Transactions        []TransactionRow
	TransactionsSkipped int
	Aliases             []string
	AliasesSkipped      int
}

// View loads the category together with its latest transactions and
// aliases.
func (s *CategoryService) View(user *domain.User, id uuid.UUID) (CategoryView, error) {
	category, err := s.CheckOwnership(user, id)
	if err != nil {
		return CategoryView{}, err
	}

	transactions, err := s.store.Transactions().ListByCategory(id, viewItemsShown+1)
	if err != nil {
		return CategoryView{}, fmt.Errorf("list category transactions: %w", err)
	}
	skippedTx := 0
	if len(transactions) > viewItemsShown {
		skippedTx = int(category.TransactionCount) - viewItemsShown
		transactions = transactions[:viewItemsShown]
	}

	rows := make([]TransactionRow, 0, len(transactions))
	for _, t := range transactions {
		row := TransactionRow{Transaction: t, CategoryName: category.Name}
		wallet, err := s.store.Wallets().GetByID(t.WalletID)
		if err != nil {
			return CategoryView{}, fmt.Errorf("load wallet: %w", err)
		}
		if wallet != nil {
			row.WalletName = wallet.Name
			row.WalletCurrency = wallet.Currency
		}
		rows = append(rows, row)
	}

	aliases, err := s.store.Categories().ListAliases(id)
	if err != nil {
		return CategoryView{}, fmt.Errorf("list category aliases: %w", err)
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

	return CategoryView{
		Category:            *category,
		Transactions:        rows,
		TransactionsSkipped: skippedTx,
		Aliases:             aliasTexts,
		AliasesSkipped:      skippedAliases,
	}, nil
}

// Package testutil provides shared mocks and helpers for tests.
package testutil

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByTelegramID(telegramID int64) (*domain.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Create(user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLanguage(id uuid.UUID, language string) error {
	args := m.Called(id, language)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateExpectation(id uuid.UUID, exp domain.Expectation) error {
	args := m.Called(id, exp)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of
// repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) ListByHolder(holder uuid.UUID) ([]domain.Wallet, error) {
	args := m.Called(holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListAllByHolder(holder uuid.UUID) ([]domain.Wallet, error) {
	args := m.Called(holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListPage(holder uuid.UUID, limit, offset int) ([]domain.Wallet, error) {
	args := m.Called(holder, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) CountByHolder(holder uuid.UUID) (int, error) {
	args := m.Called(holder)
	return args.Int(0), args.Error(1)
}

func (m *MockWalletRepository) CountDeleted(holder uuid.UUID) (int, error) {
	args := m.Called(holder)
	return args.Int(0), args.Error(1)
}

func (m *MockWalletRepository) NameExists(holder uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	args := m.Called(holder, name, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) Create(w *domain.Wallet) error {
	args := m.Called(w)
	return args.Error(0)
}

func (m *MockWalletRepository) UpdateFields(id uuid.UUID, name, currency string, initSum decimal.Decimal) error {
	args := m.Called(id, name, currency, initSum)
	return args.Error(0)
}

func (m *MockWalletRepository) SoftDelete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockWalletRepository) IncrementCounters(id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(id, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) DecrementCounters(id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(id, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) FindAliasByText(holder uuid.UUID, alias string) (*domain.WalletAlias, error) {
	args := m.Called(holder, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletAlias), args.Error(1)
}

func (m *MockWalletRepository) CreateAlias(a *domain.WalletAlias) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockWalletRepository) DeleteAliasesByWallet(wallet uuid.UUID) error {
	args := m.Called(wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) DeleteAliasByText(holder uuid.UUID, alias string) error {
	args := m.Called(holder, alias)
	return args.Error(0)
}

func (m *MockWalletRepository) ListAliases(wallet uuid.UUID) ([]domain.WalletAlias, error) {
	args := m.Called(wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WalletAlias), args.Error(1)
}

// MockCategoryRepository is a mock implementation of
// repository.CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) ListByHolder(holder uuid.UUID) ([]domain.Category, error) {
	args := m.Called(holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id uuid.UUID) (*domain.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) CountDeleted(holder uuid.UUID) (int, error) {
	args := m.Called(holder)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) NameExists(holder uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	args := m.Called(holder, name, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Create(c *domain.Category) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Rename(id uuid.UUID, name string) error {
	args := m.Called(id, name)
	return args.Error(0)
}

func (m *MockCategoryRepository) SoftDelete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCategoryRepository) IncrementCounter(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCategoryRepository) DecrementCounter(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindAliasByText(holder uuid.UUID, alias string) (*domain.CategoryAlias, error) {
	args := m.Called(holder, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryAlias), args.Error(1)
}

func (m *MockCategoryRepository) CreateAlias(a *domain.CategoryAlias) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteAliasesByCategory(category uuid.UUID) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteAliasByText(holder uuid.UUID, alias string) error {
	args := m.Called(holder, alias)
	return args.Error(0)
}

func (m *MockCategoryRepository) ListAliases(category uuid.UUID) ([]domain.CategoryAlias, error) {
	args := m.Called(category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryAlias), args.Error(1)
}

// MockTransactionRepository is a mock implementation of
// repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(t *domain.Transaction) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateDatetime(id uuid.UUID, ts int64) error {
	args := m.Called(id, ts)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByWallet(wallet uuid.UUID, limit int) ([]domain.Transaction, error) {
	args := m.Called(wallet, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByCategory(category uuid.UUID, limit int) ([]domain.Transaction, error) {
	args := m.Called(category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListMonth(holder uuid.UUID, year, month, limit, offset int) ([]domain.Transaction, error) {
	args := m.Called(holder, year, month, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountMonth(holder uuid.UUID, year, month int) (int, error) {
	args := m.Called(holder, year, month)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) ListSince(holder uuid.UUID, since int64) ([]domain.Transaction, error) {
	args := m.Called(holder, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByHolder(holder uuid.UUID) ([]domain.Transaction, error) {
	args := m.Called(holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockStore bundles the repository mocks into a repository.Store. ExecTx
// runs the function against the same mocks, so tests see transactional
// writes identically to direct ones.
type MockStore struct {
	UserRepo        *MockUserRepository
	WalletRepo      *MockWalletRepository
	CategoryRepo    *MockCategoryRepository
	TransactionRepo *MockTransactionRepository

	// TxErr, when set, is returned by ExecTx without running the
	// function.
	TxErr error
}

// NewMockStore creates a MockStore with fresh repository mocks.
func NewMockStore() *MockStore {
	return &MockStore{
		UserRepo:        new(MockUserRepository),
		WalletRepo:      new(MockWalletRepository),
		CategoryRepo:    new(MockCategoryRepository),
		TransactionRepo: new(MockTransactionRepository),
	}
}

func (s *MockStore) Users() repository.UserRepository               { return s.UserRepo }
func (s *MockStore) Wallets() repository.WalletRepository           { return s.WalletRepo }
func (s *MockStore) Categories() repository.CategoryRepository      { return s.CategoryRepo }
func (s *MockStore) Transactions() repository.TransactionRepository { return s.TransactionRepo }

func (s *MockStore) ExecTx(fn func(r repository.Registry) error) error {
	if s.TxErr != nil {
		return s.TxErr
	}
	return fn(s)
}

// AssertExpectations asserts every repository mock at once.
func (s *MockStore) AssertExpectations(t mock.TestingT) {
	s.UserRepo.AssertExpectations(t)
	s.WalletRepo.AssertExpectations(t)
	s.CategoryRepo.AssertExpectations(t)
	s.TransactionRepo.AssertExpectations(t)
}

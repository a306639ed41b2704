package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbot/internal/domain"
	"finbot/internal/testutil"
)

func newTestRegistrar(store *testutil.MockStore) *Registrar {
	r := NewRegistrar(store, NewResolver(store, 75), testutil.NewTestLogger())
	r.now = func() int64 { return 1_700_000_000 }
	return r
}

func pendingFixture() domain.PendingTransaction {
	return domain.PendingTransaction{
		Amount:   decimal.RequireFromString("-12.50"),
		Category: "groceries",
		Wallet:   "cash",
		Comment:  "lunch",
	}
}

func TestRegistrar_CategoryPromptComesFirst(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()

	// Brand-new user: neither name resolves. Only the category lookup
	// may run; the wallet must not be mentioned yet.
	store.CategoryRepo.On("FindAliasByText", user.ID, "groceries").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{}, nil)

	res, err := newTestRegistrar(store).Register(user, pendingFixture())

	assert.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingCategoryCreation, res.Outcome)
	store.WalletRepo.AssertNotCalled(t, "FindAliasByText", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestRegistrar_WalletPromptAfterCategoryResolves(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	categoryID := uuid.New()

	store.CategoryRepo.On("FindAliasByText", user.ID, "groceries").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: categoryID, Holder: user.ID, Name: "groceries"},
	}, nil)
	store.WalletRepo.On("FindAliasByText", user.ID, "cash").Return(nil, nil)
	store.WalletRepo.On("ListByHolder", user.ID).Return([]domain.Wallet{}, nil)

	res, err := newTestRegistrar(store).Register(user, pendingFixture())

	assert.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingWalletCreation, res.Outcome)
}

func TestRegistrar_FuzzyCategoryAsksForAlias(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	categoryID := uuid.New()

	store.CategoryRepo.On("FindAliasByText", user.ID, "groceris").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: categoryID, Holder: user.ID, Name: "groceries"},
	}, nil)

	p := pendingFixture()
	p.Category = "groceris"
	res, err := newTestRegistrar(store).Register(user, p)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingCategoryAliasConfirm, res.Outcome)
	assert.Equal(t, categoryID, res.Match.EntityID)
	assert.Equal(t, "groceries", res.Match.Name)
}

func TestRegistrar_CommitWritesEverything(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	categoryID := uuid.New()
	walletID := uuid.New()
	amount := decimal.RequireFromString("-12.50")

	store.CategoryRepo.On("FindAliasByText", user.ID, "groceries").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: categoryID, Holder: user.ID, Name: "groceries"},
	}, nil)
	store.WalletRepo.On("FindAliasByText", user.ID, "cash").Return(nil, nil)
	store.WalletRepo.On("ListByHolder", user.ID).Return([]domain.Wallet{
		{ID: walletID, Holder: user.ID, Name: "cash", Currency: "USD"},
	}, nil)

	store.TransactionRepo.On("Create", mock.AnythingOfType("*domain.Transaction")).Return(nil)
	store.WalletRepo.On("IncrementCounters", walletID, amount).Return(nil)
	store.CategoryRepo.On("IncrementCounter", categoryID).Return(nil)
	store.WalletRepo.On("GetByID", walletID).Return(&domain.Wallet{
		ID: walletID, Holder: user.ID, Name: "cash", Currency: "USD",
		InitSum:    decimal.RequireFromString("100"),
		CurrentSum: decimal.RequireFromString("-12.50"),
	}, nil)
	store.CategoryRepo.On("GetByID", categoryID).Return(&domain.Category{
		ID: categoryID, Holder: user.ID, Name: "groceries", TransactionCount: 1,
	}, nil)

	res, err := newTestRegistrar(store).Register(user, pendingFixture())

	assert.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	if assert.NotNil(t, res.Transaction) {
		assert.Equal(t, user.ID, res.Transaction.Holder)
		assert.Equal(t, walletID, res.Transaction.WalletID)
		assert.Equal(t, categoryID, res.Transaction.CategoryID)
		assert.Equal(t, int64(1_700_000_000), res.Transaction.Datetime)
		assert.True(t, res.Transaction.Sum.Equal(amount))
		assert.Equal(t, "lunch", res.Transaction.Comment)
	}
	assert.True(t, res.Wallet.Balance().Equal(decimal.RequireFromString("87.50")))
	store.AssertExpectations(t)
}

func TestRegistrar_ConfirmAlias(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	target := uuid.New()

	store.WalletRepo.On("CreateAlias", mock.MatchedBy(func(a *domain.WalletAlias) bool {
		return a.Holder == user.ID && a.Wallet == target && a.Alias == "csh"
	})).Return(nil)

	err := newTestRegistrar(store).ConfirmAlias(user, domain.KindWallet, "csh", target)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRegistrar_ReplaceRequiresExactNames(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	old := &domain.Transaction{
		ID: uuid.New(), Holder: user.ID, Datetime: 1_600_000_000,
		WalletID: uuid.New(), CategoryID: uuid.New(),
		Sum: decimal.RequireFromString("-5"),
	}

	store.TransactionRepo.On("GetByID", old.ID).Return(old, nil)
	store.CategoryRepo.On("FindAliasByText", user.ID, "groceris").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: uuid.New(), Holder: user.ID, Name: "groceries"},
	}, nil)

	p := pendingFixture()
	p.Category = "groceris"
	_, err := newTestRegistrar(store).Replace(user, old.ID, p)

	assert.ErrorIs(t, err, ErrCategoryUnresolved)
}

func TestRegistrar_ReplaceKeepsOriginalDatetime(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	categoryID := uuid.New()
	walletID := uuid.New()
	old := &domain.Transaction{
		ID: uuid.New(), Holder: user.ID, Datetime: 1_600_000_000,
		WalletID: walletID, CategoryID: categoryID,
		Sum: decimal.RequireFromString("-5"),
	}

	store.TransactionRepo.On("GetByID", old.ID).Return(old, nil)
	store.CategoryRepo.On("FindAliasByText", user.ID, "groceries").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: categoryID, Holder: user.ID, Name: "groceries"},
	}, nil)
	store.WalletRepo.On("FindAliasByText", user.ID, "cash").Return(nil, nil)
	store.WalletRepo.On("ListByHolder", user.ID).Return([]domain.Wallet{
		{ID: walletID, Holder: user.ID, Name: "cash", Currency: "USD"},
	}, nil)

	store.WalletRepo.On("DecrementCounters", walletID, old.Sum).Return(nil)
	store.CategoryRepo.On("DecrementCounter", categoryID).Return(nil)
	store.TransactionRepo.On("Delete", old.ID).Return(nil)
	store.TransactionRepo.On("Create", mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Datetime == old.Datetime && tx.ID != old.ID
	})).Return(nil)
	store.WalletRepo.On("IncrementCounters", walletID, mock.Anything).Return(nil)
	store.CategoryRepo.On("IncrementCounter", categoryID).Return(nil)
	store.WalletRepo.On("GetByID", walletID).Return(&domain.Wallet{
		ID: walletID, Holder: user.ID, Name: "cash", Currency: "USD",
	}, nil)
	store.CategoryRepo.On("GetByID", categoryID).Return(&domain.Category{
		ID: categoryID, Holder: user.ID, Name: "groceries",
	}, nil)

	res, err := newTestRegistrar(store).Replace(user, old.ID, pendingFixture())

	assert.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Equal(t, old.Datetime, res.Transaction.Datetime)
	store.AssertExpectations(t)
}

func TestRegistrar_RemoveReversesCounters(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	tx := &domain.Transaction{
		ID: uuid.New(), Holder: user.ID,
		WalletID: uuid.New(), CategoryID: uuid.New(),
		Sum: decimal.RequireFromString("-7"),
	}

	store.TransactionRepo.On("GetByID", tx.ID).Return(tx, nil)
	store.WalletRepo.On("DecrementCounters", tx.WalletID, tx.Sum).Return(nil)
	store.CategoryRepo.On("DecrementCounter", tx.CategoryID).Return(nil)
	store.TransactionRepo.On("Delete", tx.ID).Return(nil)

	err := newTestRegistrar(store).Remove(user, tx.ID)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRegistrar_RemoveRejectsForeignTransaction(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	tx := &domain.Transaction{
		ID: uuid.New(), Holder: uuid.New(), // someone else's
		Sum: decimal.RequireFromString("-7"),
	}

	store.TransactionRepo.On("GetByID", tx.ID).Return(tx, nil)

	err := newTestRegistrar(store).Remove(user, tx.ID)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	store.TransactionRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbot/internal/domain"
	"finbot/internal/testutil"
)

func TestWalletService_Create(t *testing.T) {
	tests := []struct {
		name          string
		walletName    string
		currency      string
		nameTaken     bool
		expectedError error
	}{
		{
			name:       "valid wallet",
			walletName: "Cash Stash",
			currency:   "usd",
		},
		{
			name:          "empty name",
			walletName:    "   ",
			currency:      "USD",
			expectedError: domain.ErrEmptyMessage,
		},
		{
			name:          "unsupported currency",
			walletName:    "cash",
			currency:      "XXX",
			expectedError: domain.ErrUnsupportedCurrency,
		},
		{
			name:          "duplicate name",
			walletName:    "cash",
			currency:      "USD",
			nameTaken:     true,
			expectedError: domain.ErrNameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStore()
			user := testUser()
			initSum := decimal.RequireFromString("100")

			if tt.expectedError == nil || tt.expectedError == domain.ErrNameTaken {
				store.WalletRepo.On("NameExists", user.ID, mock.AnythingOfType("string"), uuid.Nil).
					Return(tt.nameTaken, nil)
			}
			if tt.expectedError == nil {
				store.WalletRepo.On("DeleteAliasByText", user.ID, "cash stash").Return(nil)
				store.WalletRepo.On("Create", mock.MatchedBy(func(w *domain.Wallet) bool {
					return w.Name == "cash stash" && w.Currency == "USD" &&
						w.Holder == user.ID && w.InitSum.Equal(initSum)
				})).Return(nil)
			}

			svc := NewWalletService(store, testutil.NewTestLogger())
			wallet, err := svc.Create(user, tt.walletName, tt.currency, initSum)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "cash stash", wallet.Name)
			assert.Equal(t, "USD", wallet.Currency)
			store.AssertExpectations(t)
		})
	}
}

func TestWalletService_CheckOwnership(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()

	missing := uuid.New()
	foreign := uuid.New()
	deleted := uuid.New()

	store.WalletRepo.On("GetByID", missing).Return(nil, nil)
	store.WalletRepo.On("GetByID", foreign).Return(
		&domain.Wallet{ID: foreign, Holder: uuid.New()}, nil)
	store.WalletRepo.On("GetByID", deleted).Return(
		&domain.Wallet{ID: deleted, Holder: user.ID, IsDeleted: true}, nil)

	svc := NewWalletService(store, testutil.NewTestLogger())

	_, err := svc.CheckOwnership(user, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CheckOwnership(user, foreign)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CheckOwnership(user, deleted)
	assert.ErrorIs(t, err, domain.ErrDeleted)
}

func TestWalletService_DeleteCascadesAliases(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()

	store.WalletRepo.On("GetByID", id).Return(
		&domain.Wallet{ID: id, Holder: user.ID, Name: "cash"}, nil)
	store.WalletRepo.On("SoftDelete", id).Return(nil)
	store.WalletRepo.On("DeleteAliasesByWallet", id).Return(nil)

	svc := NewWalletService(store, testutil.NewTestLogger())
	err := svc.Delete(user, id)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestWalletService_EditDropsAllAliases(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()
	initSum := decimal.RequireFromString("50")

	store.WalletRepo.On("GetByID", id).Return(
		&domain.Wallet{ID: id, Holder: user.ID, Name: "cash", Currency: "USD"}, nil)
	store.WalletRepo.On("NameExists", user.ID, "wallet", id).Return(false, nil)
	store.WalletRepo.On("DeleteAliasByText", user.ID, "wallet").Return(nil)
	store.WalletRepo.On("DeleteAliasesByWallet", id).Return(nil)
	store.WalletRepo.On("UpdateFields", id, "wallet", "EUR", initSum).Return(nil)

	svc := NewWalletService(store, testutil.NewTestLogger())
	wallet, err := svc.Edit(user, id, "Wallet", "eur", initSum)

	assert.NoError(t, err)
	assert.Equal(t, "wallet", wallet.Name)
	assert.Equal(t, "EUR", wallet.Currency)
	store.AssertExpectations(t)
}

func TestWalletService_ListClampsPage(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()

	store.WalletRepo.On("CountByHolder", user.ID).Return(25, nil)
	store.WalletRepo.On("CountDeleted", user.ID).Return(2, nil)
	// 25 wallets at 20 per page = 2 pages; page 99 clamps to 2.
	store.WalletRepo.On("ListPage", user.ID, walletsPerPage, walletsPerPage).
		Return([]domain.Wallet{{ID: uuid.New(), Holder: user.ID}}, nil)

	svc := NewWalletService(store, testutil.NewTestLogger())
	page, err := svc.List(user, 99)

	assert.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, 25, page.Total)
	store.AssertExpectations(t)
}

package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"finbot/internal/domain"
	"finbot/internal/testutil"
)

func testUser() *domain.User {
	return &domain.User{
		ID:         uuid.New(),
		TelegramID: 123,
		Language:   "en",
	}
}

func TestResolver_AliasTierWins(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	target := uuid.New()

	// An alias hit must short-circuit: the candidate list is never
	// consulted even though a same-named real category exists.
	store.CategoryRepo.On("FindAliasByText", user.ID, "food").Return(
		&domain.CategoryAlias{ID: uuid.New(), Holder: user.ID, Category: target, Alias: "food"},
		nil,
	)
	store.CategoryRepo.On("GetByID", target).Return(
		&domain.Category{ID: target, Holder: user.ID, Name: "groceries"},
		nil,
	)

	r := NewResolver(store, 75)
	match, err := r.Resolve(user, domain.KindCategory, "Food")

	assert.NoError(t, err)
	assert.Equal(t, ResolutionExact, match.Resolution)
	assert.Equal(t, target, match.EntityID)
	assert.Equal(t, "groceries", match.Name)
	assert.Equal(t, 100, match.Score)
	store.AssertExpectations(t)
}

func TestResolver_ExactName(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()

	store.WalletRepo.On("FindAliasByText", user.ID, "cash").Return(nil, nil)
	store.WalletRepo.On("ListByHolder", user.ID).Return([]domain.Wallet{
		{ID: uuid.New(), Holder: user.ID, Name: "bank"},
		{ID: id, Holder: user.ID, Name: "cash"},
	}, nil)

	r := NewResolver(store, 75)
	match, err := r.Resolve(user, domain.KindWallet, "  CASH ")

	assert.NoError(t, err)
	assert.Equal(t, ResolutionExact, match.Resolution)
	assert.Equal(t, id, match.EntityID)
	assert.Equal(t, 100, match.Score)
}

func TestResolver_FuzzyNeedsConfirmation(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()

	store.CategoryRepo.On("FindAliasByText", user.ID, "groceris").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: id, Holder: user.ID, Name: "groceries"},
	}, nil)

	r := NewResolver(store, 75)
	match, err := r.Resolve(user, domain.KindCategory, "groceris")

	assert.NoError(t, err)
	assert.Equal(t, ResolutionFuzzy, match.Resolution)
	assert.Equal(t, id, match.EntityID)
	assert.Equal(t, "groceries", match.Name)
	assert.GreaterOrEqual(t, match.Score, 75)
	assert.Less(t, match.Score, 100)
}

func TestResolver_NoMatch(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()

	store.CategoryRepo.On("FindAliasByText", user.ID, "zzzz").Return(nil, nil)
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: uuid.New(), Holder: user.ID, Name: "groceries"},
	}, nil)

	r := NewResolver(store, 75)
	match, err := r.Resolve(user, domain.KindCategory, "zzzz")

	assert.NoError(t, err)
	assert.Equal(t, ResolutionNone, match.Resolution)
}

func TestResolver_NoCandidates(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()

	store.WalletRepo.On("FindAliasByText", user.ID, "cash").Return(nil, nil)
	store.WalletRepo.On("ListByHolder", user.ID).Return([]domain.Wallet{}, nil)

	r := NewResolver(store, 75)
	match, err := r.Resolve(user, domain.KindWallet, "cash")

	assert.NoError(t, err)
	assert.Equal(t, ResolutionNone, match.Resolution)
}

func TestResolver_ThresholdGate(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()

	store.CategoryRepo.On("FindAliasByText", user.ID, "groceris").Return(nil, nil).Twice()
	store.CategoryRepo.On("ListByHolder", user.ID).Return([]domain.Category{
		{ID: id, Holder: user.ID, Name: "groceries"},
	}, nil).Twice()

	// A permissive threshold accepts the near-miss, a maximal one
	// rejects everything short of exact.
	loose := NewResolver(store, 1)
	match, err := loose.Resolve(user, domain.KindCategory, "groceris")
	assert.NoError(t, err)
	assert.Equal(t, ResolutionFuzzy, match.Resolution)

	strict := NewResolver(store, 100)
	match, err = strict.Resolve(user, domain.KindCategory, "groceris")
	assert.NoError(t, err)
	assert.Equal(t, ResolutionNone, match.Resolution)
}

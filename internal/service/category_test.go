package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbot/internal/domain"
	"finbot/internal/testutil"
)

func TestCategoryService_Create(t *testing.T) {
	tests := []struct {
		name          string
		categoryName  string
		nameTaken     bool
		expectedName  string
		expectedError error
	}{
		{
			name:         "valid name lowercased",
			categoryName: "  Groceries ",
			expectedName: "groceries",
		},
		{
			name:          "empty name",
			categoryName:  "   ",
			expectedError: domain.ErrEmptyMessage,
		},
		{
			name:          "multi word name",
			categoryName:  "eating out",
			expectedError: domain.ErrMultiWordName,
		},
		{
			name:          "duplicate name",
			categoryName:  "groceries",
			nameTaken:     true,
			expectedError: domain.ErrNameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStore()
			user := testUser()

			if tt.expectedError == nil || tt.expectedError == domain.ErrNameTaken {
				store.CategoryRepo.On("NameExists", user.ID, mock.AnythingOfType("string"), uuid.Nil).
					Return(tt.nameTaken, nil)
			}
			if tt.expectedError == nil {
				store.CategoryRepo.On("DeleteAliasByText", user.ID, tt.expectedName).Return(nil)
				store.CategoryRepo.On("Create", mock.MatchedBy(func(c *domain.Category) bool {
					return c.Name == tt.expectedName && c.Holder == user.ID
				})).Return(nil)
			}

			svc := NewCategoryService(store, testutil.NewTestLogger())
			category, err := svc.Create(user, tt.categoryName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedName, category.Name)
			store.AssertExpectations(t)
		})
	}
}

func TestCategoryService_RenameDropsAliases(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()

	store.CategoryRepo.On("GetByID", id).Return(
		&domain.Category{ID: id, Holder: user.ID, Name: "food"}, nil)
	store.CategoryRepo.On("NameExists", user.ID, "groceries", id).Return(false, nil)
	store.CategoryRepo.On("DeleteAliasByText", user.ID, "groceries").Return(nil)
	store.CategoryRepo.On("DeleteAliasesByCategory", id).Return(nil)
	store.CategoryRepo.On("Rename", id, "groceries").Return(nil)

	svc := NewCategoryService(store, testutil.NewTestLogger())
	category, err := svc.Rename(user, id, "Groceries")

	assert.NoError(t, err)
	assert.Equal(t, "groceries", category.Name)
	store.AssertExpectations(t)
}

func TestCategoryService_DeleteCascadesAliases(t *testing.T) {
	store := testutil.NewMockStore()
	user := testUser()
	id := uuid.New()

	store.CategoryRepo.On("GetByID", id).Return(
		&domain.Category{ID: id, Holder: user.ID, Name: "food"}, nil)
	store.CategoryRepo.On("SoftDelete", id).Return(nil)
	store.CategoryRepo.On("DeleteAliasesByCategory", id).Return(nil)

	svc := NewCategoryService(store, testutil.NewTestLogger())
	err := svc.Delete(user, id)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

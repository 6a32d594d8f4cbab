package service

import (
	"testing"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWishlistServiceTest(t *testing.T) (WishlistService, *model.User, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewWishlistService(
		repository.NewWishlistRepository(testDB),
		repository.NewProductRepository(testDB),
	)

	user := &model.User{Email: "wish@example.com", PasswordHash: "hash", Name: "Wisher", IsActive: true}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Accessories"}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{
		Name:        "Laptop Stand",
		SKU:         "ACC-LS",
		Price:       decimal.RequireFromString("45.00"),
		Stock:       20,
		IsAvailable: true,
		CategoryID:  category.ID,
	}
	require.NoError(t, testDB.Create(product).Error)

	return svc, user, product, testDB
}

func TestWishlistService_AddAndList(t *testing.T) {
	svc, user, product, _ := setupWishlistServiceTest(t)

	item, err := svc.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)
	assert.NotZero(t, item.ID)

	_, err = svc.AddToWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	_, err = svc.AddToWishlist(user.ID, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	items, err := svc.GetWishlist(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].Product.ID)
}

func TestWishlistService_Remove(t *testing.T) {
	svc, user, product, _ := setupWishlistServiceTest(t)

	err := svc.RemoveFromWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemNotFound)

	_, err = svc.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromWishlist(user.ID, product.ID))

	items, err := svc.GetWishlist(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removing twice reports the missing item.
	err = svc.RemoveFromWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemNotFound)

	// Re-adding after removal works.
	_, err = svc.AddToWishlist(user.ID, product.ID)
	assert.NoError(t, err)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMaintenanceTest(t *testing.T) (MaintenanceService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := config.MaintenanceConfig{
		PendingCancelAfter:  168 * time.Hour,
		ShippedDeliverAfter: 72 * time.Hour,
	}
	svc := NewMaintenanceService(
		repository.NewProductRepository(testDB),
		repository.NewOrderRepository(testDB),
		repository.NewReviewRepository(testDB),
		nil,
		cfg,
	)
	return svc, testDB
}

func seedMaintenanceProduct(t *testing.T, testDB *gorm.DB, sku string, stock int, available bool) *model.Product {
	category := &model.Category{Name: "Category " + sku}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{
		Name:        "Product " + sku,
		SKU:         sku,
		Price:       decimal.RequireFromString("10.00"),
		Stock:       stock,
		IsAvailable: available,
		CategoryID:  category.ID,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func TestMaintenanceService_SyncAvailability(t *testing.T) {
	svc, testDB := setupMaintenanceTest(t)

	soldOut := seedMaintenanceProduct(t, testDB, "MT-1", 0, true)
	restocked := seedMaintenanceProduct(t, testDB, "MT-2", 5, false)
	untouched := seedMaintenanceProduct(t, testDB, "MT-3", 5, true)

	hidden, restored, err := svc.SyncAvailability()
	require.NoError(t, err)
	assert.EqualValues(t, 1, hidden)
	assert.EqualValues(t, 1, restored)

	var reloaded model.Product
	require.NoError(t, testDB.First(&reloaded, soldOut.ID).Error)
	assert.False(t, reloaded.IsAvailable)
	require.NoError(t, testDB.First(&reloaded, restocked.ID).Error)
	assert.True(t, reloaded.IsAvailable)
	require.NoError(t, testDB.First(&reloaded, untouched.ID).Error)
	assert.True(t, reloaded.IsAvailable)

	// Second run finds nothing left to fix.
	hidden, restored, err = svc.SyncAvailability()
	require.NoError(t, err)
	assert.Zero(t, hidden)
	assert.Zero(t, restored)
}

func TestMaintenanceService_SweepOrders(t *testing.T) {
	svc, testDB := setupMaintenanceTest(t)

	user := &model.User{Email: "sweep@example.com", PasswordHash: "hash", Name: "Sweep", IsActive: true}
	require.NoError(t, testDB.Create(user).Error)
	now := time.Now()

	abandoned := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, testDB.Create(abandoned).Error)
	require.NoError(t, testDB.Model(abandoned).Update("created_at", now.Add(-169*time.Hour)).Error)

	activeCart := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, testDB.Create(activeCart).Error)

	lingering := &model.Order{UserID: user.ID, Status: model.OrderStatusShipped}
	require.NoError(t, testDB.Create(lingering).Error)
	require.NoError(t, testDB.Model(lingering).Update("updated_at", now.Add(-73*time.Hour)).Error)

	recentShipment := &model.Order{UserID: user.ID, Status: model.OrderStatusShipped}
	require.NoError(t, testDB.Create(recentShipment).Error)

	changed, err := svc.SweepOrders(now)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	var reloaded model.Order
	require.NoError(t, testDB.First(&reloaded, abandoned.ID).Error)
	assert.Equal(t, model.OrderStatusCanceled, reloaded.Status)
	require.NoError(t, testDB.First(&reloaded, lingering.ID).Error)
	assert.Equal(t, model.OrderStatusDelivered, reloaded.Status)
	require.NoError(t, testDB.First(&reloaded, activeCart.ID).Error)
	assert.Equal(t, model.OrderStatusPending, reloaded.Status)
	require.NoError(t, testDB.First(&reloaded, recentShipment.ID).Error)
	assert.Equal(t, model.OrderStatusShipped, reloaded.Status)
}

func TestMaintenanceService_RecomputeRatings(t *testing.T) {
	svc, testDB := setupMaintenanceTest(t)

	product := seedMaintenanceProduct(t, testDB, "MT-R", 5, true)
	user := &model.User{Email: "rate@example.com", PasswordHash: "hash", Name: "Rate", IsActive: true}
	require.NoError(t, testDB.Create(user).Error)

	for _, rating := range []int{3, 5} {
		review := model.Review{UserID: user.ID, ProductID: product.ID, Rating: rating, Comment: "ok"}
		require.NoError(t, testDB.Create(&review).Error)
	}

	// No cache wired; the aggregation itself still runs.
	count, err := svc.RecomputeRatings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMaintenanceService_CleanupReviews(t *testing.T) {
	svc, testDB := setupMaintenanceTest(t)

	product := seedMaintenanceProduct(t, testDB, "MT-C", 5, true)
	user := &model.User{Email: "clean@example.com", PasswordHash: "hash", Name: "Clean", IsActive: true}
	require.NoError(t, testDB.Create(user).Error)

	reviews := []model.Review{
		{UserID: user.ID, ProductID: product.ID, Rating: 5, Comment: "solid build quality"},
		{UserID: user.ID, ProductID: product.ID, Rating: 4, Comment: ""},
		{UserID: user.ID, ProductID: product.ID, Rating: 3, Comment: "   "},
		{UserID: user.ID, ProductID: product.ID, Rating: 5, Comment: "<generator object render at 0x7f>"},
	}
	for i := range reviews {
		require.NoError(t, testDB.Create(&reviews[i]).Error)
	}

	deleted, err := svc.CleanupReviews()
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	var remaining []model.Review
	require.NoError(t, testDB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "solid build quality", remaining[0].Comment)
}

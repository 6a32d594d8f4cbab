package repository

import (
	"testing"
	"time"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewOrderRepository(testDB)
	return testDB, repo
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashed",
		Name:         "Test User",
		IsActive:     true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, sku, price string, stock int) *model.Product {
	category := &model.Category{Name: "Cat " + sku}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{
		Name:        "Product " + sku,
		SKU:         sku,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: true,
		CategoryID:  category.ID,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "buyer@example.com")
	product := createTestProduct(t, testDB, "SKU-1", "100.00", 10)

	order := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductID: product.ID, Quantity: 2},
		},
	}
	require.NoError(t, repo.Create(order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	assert.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, product.ID, found.Items[0].Product.ID)
}

func TestOrderRepository_FindByUserID_ExcludesCart(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "history@example.com")

	cart := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	placed := &model.Order{UserID: user.ID, Status: model.OrderStatusAssembling, OrderNumber: "ORD-202608280900-0001"}
	require.NoError(t, repo.Create(cart))
	require.NoError(t, repo.Create(placed))

	history, err := repo.FindByUserID(user.ID, false)
	assert.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, placed.ID, history[0].ID)

	all, err := repo.FindByUserID(user.ID, true)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderRepository_FindCartsByUser_NewestFirst(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "carts@example.com")

	older := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, repo.Create(older))
	require.NoError(t, testDB.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	newer := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, repo.Create(newer))

	carts, err := repo.FindCartsByUser(user.ID)
	assert.NoError(t, err)
	require.Len(t, carts, 2)
	assert.Equal(t, newer.ID, carts[0].ID)
	assert.Equal(t, older.ID, carts[1].ID)
}

func TestOrderRepository_FindSweepCandidates(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "sweep@example.com")
	now := time.Now()

	staleCart := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, repo.Create(staleCart))
	require.NoError(t, testDB.Model(staleCart).Update("created_at", now.Add(-8*24*time.Hour)).Error)

	freshCart := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, repo.Create(freshCart))

	lingering := &model.Order{UserID: user.ID, Status: model.OrderStatusShipped}
	require.NoError(t, repo.Create(lingering))
	require.NoError(t, testDB.Model(lingering).Update("updated_at", now.Add(-4*24*time.Hour)).Error)

	recentShipment := &model.Order{UserID: user.ID, Status: model.OrderStatusShipped}
	require.NoError(t, repo.Create(recentShipment))

	candidates, err := repo.FindSweepCandidates(now.Add(-7*24*time.Hour), now.Add(-3*24*time.Hour))
	assert.NoError(t, err)
	require.Len(t, candidates, 2)

	ids := []uint{candidates[0].ID, candidates[1].ID}
	assert.Contains(t, ids, staleCart.ID)
	assert.Contains(t, ids, lingering.ID)
}

func TestOrderRepository_HasPurchasedProduct(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "purchase@example.com")
	bought := createTestProduct(t, testDB, "SKU-B", "50.00", 10)
	browsed := createTestProduct(t, testDB, "SKU-C", "60.00", 10)

	delivered := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusDelivered,
		Items:  []model.OrderItem{{ProductID: bought.ID, Quantity: 1}},
	}
	require.NoError(t, repo.Create(delivered))

	// Items still sitting in a cart do not count as purchases.
	cart := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{ProductID: browsed.ID, Quantity: 1}},
	}
	require.NoError(t, repo.Create(cart))

	ok, err := repo.HasPurchasedProduct(user.ID, bought.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasPurchasedProduct(user.ID, browsed.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderRepository_SalesBetween(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "sales@example.com")
	product := createTestProduct(t, testDB, "SKU-S", "100.00", 20)

	placed := &model.Order{
		UserID:     user.ID,
		Status:     model.OrderStatusAssembling,
		TotalPrice: decimal.RequireFromString("200.00"),
		Items:      []model.OrderItem{{ProductID: product.ID, Quantity: 2}},
	}
	require.NoError(t, repo.Create(placed))

	// Carts and canceled orders stay out of the report.
	cart := &model.Order{UserID: user.ID, Status: model.OrderStatusPending, TotalPrice: decimal.RequireFromString("999.00")}
	require.NoError(t, repo.Create(cart))
	canceled := &model.Order{UserID: user.ID, Status: model.OrderStatusCanceled, TotalPrice: decimal.RequireFromString("50.00")}
	require.NoError(t, repo.Create(canceled))

	// Orders before the window stay out too.
	stale := &model.Order{UserID: user.ID, Status: model.OrderStatusDelivered, TotalPrice: decimal.RequireFromString("75.00")}
	require.NoError(t, repo.Create(stale))
	require.NoError(t, testDB.Model(stale).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	rows, err := repo.SalesBetween(time.Now().Add(-24*time.Hour), time.Now().Add(time.Hour))
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0].OrderCount)
	assert.EqualValues(t, 2, rows[0].ItemCount)
	assert.InDelta(t, 200.00, rows[0].Revenue, 0.001)
}

func TestOrderRepository_ItemLifecycle(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "items@example.com")
	product := createTestProduct(t, testDB, "SKU-I", "30.00", 10)

	cart := &model.Order{UserID: user.ID, Status: model.OrderStatusPending}
	require.NoError(t, repo.Create(cart))

	item := &model.OrderItem{OrderID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.SaveItem(item))

	found, err := repo.FindItem(cart.ID, product.ID)
	assert.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	found.Quantity = 3
	require.NoError(t, repo.SaveItem(found))

	again, err := repo.FindItem(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Quantity)

	require.NoError(t, repo.DeleteItem(item.ID))
	_, err = repo.FindItem(cart.ID, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_CategoryUnitsBetween(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "categories@example.com")
	keyboard := createTestProduct(t, testDB, "SKU-KB", "50.00", 30)
	mouse := createTestProduct(t, testDB, "SKU-MS", "20.00", 30)

	placed := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusShipped,
		Items: []model.OrderItem{
			{ProductID: keyboard.ID, Quantity: 5},
			{ProductID: mouse.ID, Quantity: 2},
		},
	}
	require.NoError(t, repo.Create(placed))

	// Cart items never count towards sales.
	cart := &model.Order{
		UserID: user.ID,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{ProductID: mouse.ID, Quantity: 9}},
	}
	require.NoError(t, repo.Create(cart))

	rows, err := repo.CategoryUnitsBetween(time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 5)
	assert.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cat SKU-KB", rows[0].CategoryName)
	assert.EqualValues(t, 5, rows[0].Units)
	assert.Equal(t, "Cat SKU-MS", rows[1].CategoryName)
	assert.EqualValues(t, 2, rows[1].Units)

	limited, err := repo.CategoryUnitsBetween(time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 1)
	assert.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOrderRepository_FindAll(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	alice := createTestUser(t, testDB, "alice@example.com")
	bob := createTestUser(t, testDB, "bob@example.com")

	require.NoError(t, repo.Create(&model.Order{UserID: alice.ID, Status: model.OrderStatusAssembling}))
	require.NoError(t, repo.Create(&model.Order{UserID: bob.ID, Status: model.OrderStatusDelivered}))
	require.NoError(t, repo.Create(&model.Order{UserID: bob.ID, Status: model.OrderStatusPending}))

	orders, err := repo.FindAll()
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, order := range orders {
		assert.NotEqual(t, model.OrderStatusPending, order.Status)
	}
}

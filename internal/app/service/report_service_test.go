package service

import (
	"testing"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupReportServiceTest(t *testing.T) (ReportService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := config.MaintenanceConfig{ReportDir: t.TempDir()}
	svc := NewReportService(
		repository.NewOrderRepository(testDB),
		repository.NewUserRepository(testDB),
		cfg,
	)
	return svc, testDB
}

func TestReportService_GenerateSalesReport(t *testing.T) {
	svc, testDB := setupReportServiceTest(t)

	user := &model.User{Email: "report@example.com", PasswordHash: "hash", Name: "Report", IsActive: true}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Components"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{
		Name:        "SSD",
		SKU:         "CMP-SSD",
		Price:       decimal.RequireFromString("95.00"),
		Stock:       10,
		IsAvailable: true,
		CategoryID:  category.ID,
	}
	require.NoError(t, testDB.Create(product).Error)

	order := &model.Order{
		UserID:     user.ID,
		Status:     model.OrderStatusAssembling,
		TotalPrice: decimal.RequireFromString("190.00"),
		Items:      []model.OrderItem{{ProductID: product.ID, Quantity: 2}},
	}
	require.NoError(t, testDB.Create(order).Error)
	require.NoError(t, testDB.Model(order).Update("created_at", time.Now().Add(-24*time.Hour)).Error)

	// Today's orders belong to tomorrow's report.
	today := &model.Order{
		UserID:     user.ID,
		Status:     model.OrderStatusAssembling,
		TotalPrice: decimal.RequireFromString("500.00"),
		Items:      []model.OrderItem{{ProductID: product.ID, Quantity: 4}},
	}
	require.NoError(t, testDB.Create(today).Error)

	path, err := svc.GenerateSalesReport(time.Now())
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Date", "Orders", "Items", "Revenue"}, rows[0])
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "2", rows[1][2])
	assert.Equal(t, "190", rows[1][3])

	// Category section sits below the daily rows.
	assert.Equal(t, []string{"Category", "Units sold"}, rows[3])
	assert.Equal(t, "Components", rows[4][0])
	assert.Equal(t, "2", rows[4][1])
}

func TestReportService_GenerateActivityReport(t *testing.T) {
	svc, testDB := setupReportServiceTest(t)

	now := time.Now()
	recent := now.Add(-2 * 24 * time.Hour)
	old := now.Add(-60 * 24 * time.Hour)

	users := []model.User{
		{Email: "a@example.com", PasswordHash: "hash", Name: "A", IsActive: true, LastLoginAt: &recent},
		{Email: "b@example.com", PasswordHash: "hash", Name: "B", IsActive: true, LastLoginAt: &old},
	}
	for i := range users {
		require.NoError(t, testDB.Create(&users[i]).Error)
	}
	require.NoError(t, testDB.Model(&users[1]).Update("created_at", old).Error)

	path, err := svc.GenerateActivityReport(now)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "2", rows[1][1])  // total users
	assert.Equal(t, "1", rows[2][1])  // new in the last 30 days
	assert.Equal(t, "1", rows[3][1])  // active in the last 7 days
	assert.Equal(t, "50", rows[4][1]) // active share of the base
}

func TestReportService_GenerateActivityReport_NoUsers(t *testing.T) {
	svc, _ := setupReportServiceTest(t)

	path, err := svc.GenerateActivityReport(time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "0", rows[1][1])
	assert.Equal(t, "0", rows[4][1])
}

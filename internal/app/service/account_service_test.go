package service

import (
	"testing"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/getter-shop/getter-backend/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAccountServiceTest(t *testing.T) (AccountService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := config.MaintenanceConfig{
		InactiveReminderAfter: 30 * 24 * time.Hour,
		DeactivateAfter:       365 * 24 * time.Hour,
	}
	svc := NewAccountService(repository.NewUserRepository(testDB), mailer.NewNoopMailer(), cfg)
	return svc, testDB
}

func seedUserWithLogin(t *testing.T, testDB *gorm.DB, email string, role model.UserRole, lastLogin *time.Time) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "User",
		Role:         role,
		IsActive:     true,
		LastLoginAt:  lastLogin,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestAccountService_SendInactivityReminders(t *testing.T) {
	svc, testDB := setupAccountServiceTest(t)
	now := time.Now()

	stale := now.Add(-31 * 24 * time.Hour)
	fresh := now.Add(-2 * 24 * time.Hour)

	seedUserWithLogin(t, testDB, "dormant@example.com", model.RoleUser, &stale)
	seedUserWithLogin(t, testDB, "active@example.com", model.RoleUser, &fresh)
	seedUserWithLogin(t, testDB, "never@example.com", model.RoleUser, nil)
	seedUserWithLogin(t, testDB, "admin@example.com", model.RoleAdmin, &stale)

	sent, err := svc.SendInactivityReminders(now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestAccountService_DeactivateDormantAccounts(t *testing.T) {
	svc, testDB := setupAccountServiceTest(t)
	now := time.Now()

	ancient := now.Add(-400 * 24 * time.Hour)
	recent := now.Add(-10 * 24 * time.Hour)

	dormant := seedUserWithLogin(t, testDB, "gone@example.com", model.RoleUser, &ancient)
	active := seedUserWithLogin(t, testDB, "here@example.com", model.RoleUser, &recent)
	admin := seedUserWithLogin(t, testDB, "root@example.com", model.RoleAdmin, &ancient)

	deactivated, err := svc.DeactivateDormantAccounts(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deactivated)

	var reloaded model.User
	require.NoError(t, testDB.First(&reloaded, dormant.ID).Error)
	assert.False(t, reloaded.IsActive)

	// Admins and recently seen users keep their access.
	require.NoError(t, testDB.First(&reloaded, active.ID).Error)
	assert.True(t, reloaded.IsActive)
	require.NoError(t, testDB.First(&reloaded, admin.ID).Error)
	assert.True(t, reloaded.IsActive)
}

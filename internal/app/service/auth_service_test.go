package service

import (
	"testing"
	"time"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	svc := NewAuthService(userRepo, "test-secret", 15*time.Minute, 168*time.Hour)
	return svc, testDB
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, tokens, err := svc.Register("new@example.com", "password123", "New User")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, _, err = svc.Register("new@example.com", "password123", "Duplicate")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	svc, testDB := setupAuthServiceTest(t)

	_, _, err := svc.Register("login@example.com", "password123", "Login User")
	require.NoError(t, err)

	user, tokens, err := svc.Login("login@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	require.NotNil(t, user.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *user.LastLoginAt, 5*time.Second)

	// The login time is persisted, not just set on the returned value.
	var reloaded model.User
	require.NoError(t, testDB.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.LastLoginAt)

	_, _, err = svc.Login("login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	svc, testDB := setupAuthServiceTest(t)

	user, _, err := svc.Register("off@example.com", "password123", "Off User")
	require.NoError(t, err)
	require.NoError(t, testDB.Model(user).Update("is_active", false).Error)

	_, _, err = svc.Login("off@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, _, err := svc.Register("profile@example.com", "password123", "Before")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, "After", "https://cdn.example.com/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "https://cdn.example.com/avatar.png", updated.ProfileImage)

	// Blank fields leave the current values alone.
	updated, err = svc.UpdateProfile(user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)

	_, err = svc.UpdateProfile(9999, "Ghost", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

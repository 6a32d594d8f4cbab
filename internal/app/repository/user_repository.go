package repository

import (
	"math"
	"time"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"gorm.io/gorm"
)

// ActivityStats summarizes user activity for the weekly report.
type ActivityStats struct {
	TotalUsers    int64
	NewUsers30d   int64
	ActiveUsers7d int64
	ActivePercent float64
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	UpdateLastLogin(id uint, at time.Time) error
	FindInactiveSince(threshold time.Time) ([]model.User, error)
	DeactivateInactiveSince(threshold time.Time) (int64, error)
	GetActivityStats(now time.Time) (ActivityStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(id uint, at time.Time) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("last_login_at", at).Error; err != nil {
		logger.Error("Failed to update last login timestamp", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}

// FindInactiveSince returns active, non-admin users whose last login
// predates the threshold. Users who never logged in are not included.
func (r *userRepository) FindInactiveSince(threshold time.Time) ([]model.User, error) {
	var users []model.User
	err := r.db.
		Where("is_active = ?", true).
		Where("role <> ?", model.RoleAdmin).
		Where("last_login_at IS NOT NULL AND last_login_at < ?", threshold).
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to find inactive users", err, map[string]interface{}{
			"threshold": threshold,
		})
		return nil, err
	}

	logger.Debug("Inactive users found", map[string]interface{}{
		"count":     len(users),
		"threshold": threshold,
	})
	return users, nil
}

// DeactivateInactiveSince flips is_active off for non-admin accounts idle
// beyond the threshold, as a single batch update.
func (r *userRepository) DeactivateInactiveSince(threshold time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("is_active = ?", true).
		Where("role <> ?", model.RoleAdmin).
		Where("last_login_at IS NOT NULL AND last_login_at < ?", threshold).
		Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate inactive users", result.Error, map[string]interface{}{
			"threshold": threshold,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *userRepository) GetActivityStats(now time.Time) (ActivityStats, error) {
	stats := ActivityStats{}

	if err := r.db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&model.User{}).
		Where("created_at >= ?", now.AddDate(0, 0, -30)).
		Count(&stats.NewUsers30d).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&model.User{}).
		Where("last_login_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.ActiveUsers7d).Error; err != nil {
		return stats, err
	}
	if stats.TotalUsers > 0 {
		stats.ActivePercent = math.Round(float64(stats.ActiveUsers7d)/float64(stats.TotalUsers)*10000) / 100
	}

	return stats, nil
}

package repository

import (
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindByProduct(productID uint) ([]model.Review, error)
	FindByUserAndProduct(userID, productID uint) (*model.Review, error)
	Update(review *model.Review) error
	Delete(id uint) error
	DeleteEmptyComments() (int64, error)
	DeleteCommentsContaining(fragment string) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"user_id":    review.UserID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"user_id":    review.UserID,
			"product_id": review.ProductID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Preload("User").Preload("Product").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByProduct(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to find reviews by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) FindByUserAndProduct(userID, productID uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Update(review *model.Review) error {
	if err := r.db.Save(review).Error; err != nil {
		logger.Error("Failed to update review in database", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Review{}, id).Error; err != nil {
		logger.Error("Failed to delete review from database", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) DeleteEmptyComments() (int64, error) {
	result := r.db.Where("comment IS NULL OR TRIM(comment) = ''").Delete(&model.Review{})
	if result.Error != nil {
		logger.Error("Failed to delete empty reviews", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *reviewRepository) DeleteCommentsContaining(fragment string) (int64, error) {
	result := r.db.Where("comment LIKE ?", "%"+fragment+"%").Delete(&model.Review{})
	if result.Error != nil {
		logger.Error("Failed to delete reviews by fragment", result.Error, map[string]interface{}{
			"fragment": fragment,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

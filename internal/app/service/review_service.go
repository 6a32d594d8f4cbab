package service

import (
	"errors"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewNotEligible   = errors.New("user has not purchased this product")
	ErrReviewAlreadyExists = errors.New("review already exists for this product")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrNotReviewAuthor     = errors.New("review belongs to another user")
)

// ReviewInput carries the writable review fields.
type ReviewInput struct {
	Rating  int
	Comment string
	Pros    string
	Cons    string
}

type ReviewService interface {
	CreateReview(userID, productID uint, input ReviewInput, isAdmin bool) (*model.Review, error)
	GetProductReviews(productID uint) ([]model.Review, error)
	UpdateReview(userID, reviewID uint, input ReviewInput, isAdmin bool) (*model.Review, error)
	DeleteReview(userID, reviewID uint, isAdmin bool) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (input ReviewInput) validate() error {
	if input.Rating < model.MinRating || input.Rating > model.MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// CreateReview requires a shipped or delivered order containing the
// product. Admins may review anything.
func (s *reviewService) CreateReview(userID, productID uint, input ReviewInput, isAdmin bool) (*model.Review, error) {
	logger.Info("Creating review", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     input.Rating,
	})

	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !isAdmin {
		purchased, err := s.orderRepo.HasPurchasedProduct(userID, productID)
		if err != nil {
			return nil, err
		}
		if !purchased {
			logger.Warn("Review rejected: no purchase on record", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrReviewNotEligible
		}
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewAlreadyExists
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Pros:      input.Pros,
		Cons:      input.Cons,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": productID,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(productID uint) ([]model.Review, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.reviewRepo.FindByProduct(productID)
}

func (s *reviewService) UpdateReview(userID, reviewID uint, input ReviewInput, isAdmin bool) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if !isAdmin && review.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Comment = input.Comment
	review.Pros = input.Pros
	review.Cons = input.Cons

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	logger.Info("Review updated", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})
	return review, nil
}

func (s *reviewService) DeleteReview(userID, reviewID uint, isAdmin bool) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if !isAdmin && review.UserID != userID {
		return ErrNotReviewAuthor
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})
	return nil
}

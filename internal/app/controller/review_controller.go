package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/getter-shop/getter-backend/internal/app/service"
	apperrors "github.com/getter-shop/getter-backend/internal/errors"
	"github.com/getter-shop/getter-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
	Pros    string `json:"pros"`
	Cons    string `json:"cons"`
}

// GetProductReviews lists reviews for a product.
// GET /api/v1/products/:id/reviews
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	reviews, err := ctrl.reviewService.GetProductReviews(uint(productID))
	if err != nil {
		log.Error("Failed to list reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list reviews")
		return
	}

	average := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, review := range reviews {
			sum += review.Rating
		}
		average = float64(sum) / float64(len(reviews))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
		"average": average,
	})
}

// CreateReview posts a review. The caller must have a shipped or
// delivered order containing the product, unless they are an admin.
// POST /api/v1/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Rating is required")
		return
	}

	review, err := ctrl.reviewService.CreateReview(userID, uint(productID), service.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		Pros:    req.Pros,
		Cons:    req.Cons,
	}, middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrReviewNotEligible):
			apperrors.Forbidden(c, "Only customers who received this product can review it")
		case errors.Is(err, service.ErrReviewAlreadyExists):
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "You have already reviewed this product")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create review")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review posted",
		"review":  review,
	})
}

// UpdateReview edits a review. Only the author or an admin may edit.
// PUT /api/v1/reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid review ID")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Rating is required")
		return
	}

	review, err := ctrl.reviewService.UpdateReview(userID, uint(reviewID), service.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		Pros:    req.Pros,
		Cons:    req.Cons,
	}, middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrNotReviewAuthor):
			apperrors.Forbidden(c, "You can only edit your own reviews")
		default:
			log.Error("Failed to update review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated",
		"review":  review,
	})
}

// DeleteReview removes a review. Only the author or an admin may delete.
// DELETE /api/v1/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid review ID")
		return
	}

	if err := ctrl.reviewService.DeleteReview(userID, uint(reviewID), middleware.IsAdmin(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
		case errors.Is(err, service.ErrNotReviewAuthor):
			apperrors.Forbidden(c, "You can only delete your own reviews")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

package service

import (
	"context"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/getter-shop/getter-backend/pkg/redis"
)

// reviewPlaceholderFragment marks comments that were filled from an
// unrendered template and carry no reader-visible text.
const reviewPlaceholderFragment = "<generator object"

// MaintenanceService hosts the periodic catalog and order upkeep jobs.
// Every method is safe to run repeatedly; a run that finds nothing to do
// is a no-op.
type MaintenanceService interface {
	SyncAvailability() (hidden, restored int64, err error)
	SweepOrders(now time.Time) (int, error)
	RecomputeRatings(ctx context.Context) (int, error)
	CleanupReviews() (int64, error)
}

type maintenanceService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	reviewRepo  repository.ReviewRepository
	ratingCache *redis.RatingCache
	cfg         config.MaintenanceConfig
}

func NewMaintenanceService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	reviewRepo repository.ReviewRepository,
	ratingCache *redis.RatingCache,
	cfg config.MaintenanceConfig,
) MaintenanceService {
	return &maintenanceService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		reviewRepo:  reviewRepo,
		ratingCache: ratingCache,
		cfg:         cfg,
	}
}

// SyncAvailability reconciles the availability flag with stock levels in
// both directions.
func (s *maintenanceService) SyncAvailability() (int64, int64, error) {
	hidden, err := s.productRepo.MarkUnavailableOutOfStock()
	if err != nil {
		return 0, 0, err
	}

	restored, err := s.productRepo.MarkAvailableInStock()
	if err != nil {
		return hidden, 0, err
	}

	logger.Info("Availability sync finished", map[string]interface{}{
		"hidden":   hidden,
		"restored": restored,
	})
	return hidden, restored, nil
}

// SweepOrders cancels carts abandoned past the pending cutoff and marks
// long-shipped orders delivered.
func (s *maintenanceService) SweepOrders(now time.Time) (int, error) {
	candidates, err := s.orderRepo.FindSweepCandidates(
		now.Add(-s.cfg.PendingCancelAfter),
		now.Add(-s.cfg.ShippedDeliverAfter),
	)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range candidates {
		order := &candidates[i]
		previous := order.Status
		if !order.UpdateStatusByTime(now, s.cfg.PendingCancelAfter, s.cfg.ShippedDeliverAfter) {
			continue
		}
		if err := s.orderRepo.UpdateStatus(order.ID, order.Status); err != nil {
			return changed, err
		}
		changed++

		logger.Info("Order swept", map[string]interface{}{
			"order_id": order.ID,
			"from":     previous,
			"to":       order.Status,
		})
	}

	logger.Info("Order sweep finished", map[string]interface{}{
		"candidates": len(candidates),
		"changed":    changed,
	})
	return changed, nil
}

// RecomputeRatings refreshes the cached review average for every
// reviewed product.
func (s *maintenanceService) RecomputeRatings(ctx context.Context) (int, error) {
	ratings, err := s.productRepo.AverageRatings()
	if err != nil {
		return 0, err
	}

	cached := 0
	siteTotal := 0.0
	for _, rating := range ratings {
		siteTotal += rating.Average
		if s.ratingCache == nil {
			continue
		}
		if err := s.ratingCache.Set(ctx, rating.ProductID, rating.Average); err != nil {
			logger.Error("Failed to cache product rating", err, map[string]interface{}{
				"product_id": rating.ProductID,
			})
			continue
		}
		cached++
	}

	siteAverage := 0.0
	if len(ratings) > 0 {
		siteAverage = siteTotal / float64(len(ratings))
	}
	logger.Info("Rating recompute finished", map[string]interface{}{
		"products":     len(ratings),
		"cached":       cached,
		"site_average": siteAverage,
	})
	return len(ratings), nil
}

// CleanupReviews drops reviews with no usable comment: blank ones and
// the placeholder text left by a broken importer.
func (s *maintenanceService) CleanupReviews() (int64, error) {
	empty, err := s.reviewRepo.DeleteEmptyComments()
	if err != nil {
		return 0, err
	}

	placeholders, err := s.reviewRepo.DeleteCommentsContaining(reviewPlaceholderFragment)
	if err != nil {
		return empty, err
	}

	total := empty + placeholders
	logger.Info("Review cleanup finished", map[string]interface{}{
		"empty":        empty,
		"placeholders": placeholders,
		"deleted":      total,
	})
	return total, nil
}

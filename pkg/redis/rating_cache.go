package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RatingCache stores per-product average ratings computed by the nightly
// recompute job. A nil cache (Redis not configured) disables caching and
// callers fall back to aggregating on demand.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache creates a rating cache on top of a Redis client
func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	if client == nil {
		return nil
	}
	return &RatingCache{client: client, ttl: ttl}
}

func ratingKey(productID uint) string {
	return fmt.Sprintf("rating:product:%d", productID)
}

// Set stores the average rating for a product
func (c *RatingCache) Set(ctx context.Context, productID uint, average float64) error {
	if c == nil {
		return nil
	}
	value := strconv.FormatFloat(average, 'f', 2, 64)
	if err := c.client.Set(ctx, ratingKey(productID), value, c.ttl).Err(); err != nil {
		logger.Error("Failed to cache product rating", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

// Get returns the cached average rating for a product. The second return
// value is false on a cache miss.
func (c *RatingCache) Get(ctx context.Context, productID uint) (float64, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, ratingKey(productID)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		logger.Error("Failed to read cached product rating", err, map[string]interface{}{
			"product_id": productID,
		})
		return 0, false
	}
	average, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return average, true
}

package middleware

import (
	"net/http"
	"time"

	"github.com/getter-shop/getter-backend/internal/errors"
	"github.com/getter-shop/getter-backend/pkg/redis"
	"github.com/gin-gonic/gin"
)

const (
	rateLimitPeriod = 1 * time.Minute
	rateLimitCount  = 10
)

// RateLimiter is a fixed-window per-IP limiter for the auth endpoints.
// Without a redis connection it lets everything through.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := redis.GetClient()
		if client == nil {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)
		key := "rate_limit:" + c.ClientIP()

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Error("Rate limit check failed", err, map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		if count == 1 {
			client.Expire(c.Request.Context(), key, rateLimitPeriod)
		}

		if count > rateLimitCount {
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"ip":    c.ClientIP(),
				"path":  c.Request.URL.Path,
				"count": count,
			})
			errors.RespondWithError(c, http.StatusTooManyRequests, errors.RateLimitExceeded, "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}

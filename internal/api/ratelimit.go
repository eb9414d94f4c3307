package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/campuslink/facility-booking-backend/internal/auth"
)

// RateLimit returns a fixed-window per-user limiter backed by Redis.
// It protects write endpoints (booking creation) from request floods; a
// Redis outage fails open so the limiter never takes bookings down with it.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		redisKey := fmt.Sprintf("ratelimit:book:%s", key)

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, redisKey).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, redisKey, window)
		}

		if count > int64(limit) {
			ttl, _ := rdb.TTL(ctx, redisKey).Result()
			if ttl > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many booking requests, slow down",
			})
			return
		}

		c.Next()
	}
}

package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"civicwatch/internal/config"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/logger"
)

// RateLimitMiddleware throttles requests. A process-local limiter caps total
// throughput; Redis windows enforce per-user and per-IP fairness across
// instances.
type RateLimitMiddleware struct {
	redis  *redis.Client
	global *rate.Limiter
	logger *logger.Logger
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware(redisClient *redis.Client, cfg *config.RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redis:  redisClient,
		global: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger: logger.NewComponentLogger("RateLimit"),
	}
}

// Global applies the process-wide throughput cap.
func (m *RateLimitMiddleware) Global() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.global.Allow() {
			utils.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PerUser limits an authenticated user to limit requests per window.
// It must run after RequireAuth.
func (m *RateLimitMiddleware) PerUser(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("%suser:%s:%s", constants.RateLimitPrefix, c.FullPath(), userID.Hex())
		m.enforceWindow(c, key, limit, window)
	}
}

// PerIP limits a client address to limit requests per window.
func (m *RateLimitMiddleware) PerIP(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%sip:%s:%s", constants.RateLimitPrefix, c.FullPath(), c.ClientIP())
		m.enforceWindow(c, key, limit, window)
	}
}

// enforceWindow counts the request against a fixed Redis window. Redis
// being down never blocks traffic.
func (m *RateLimitMiddleware) enforceWindow(c *gin.Context, key string, limit int, window time.Duration) {
	ctx := c.Request.Context()

	count, err := m.incrWindow(ctx, key, window)
	if err != nil {
		m.logger.WithError(err).Warn("Rate limit check failed, allowing request")
		c.Next()
		return
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-Rate-Limit-Limit", strconv.Itoa(limit))
	c.Header("X-Rate-Limit-Remaining", strconv.FormatInt(remaining, 10))

	if count > int64(limit) {
		utils.TooManyRequests(c, "Too many requests, please try again later")
		c.Abort()
		return
	}

	c.Next()
}

func (m *RateLimitMiddleware) incrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vantage-service/vantage_service/internal/infrastructure/config"
	"github.com/vantage-service/vantage_service/pkg/logger"
	"github.com/vantage-service/vantage_service/pkg/metrics"
)

// RateLimiter throttles per-IP request rates. With Redis it uses a fixed
// window shared across instances; without it each instance falls back to a
// local token bucket.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	redis  *redis.Client
	logger *logger.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates a RateLimiter. redisClient may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		redis:    redisClient,
		logger:   log,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Limit returns the throttling middleware.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.cfg.Enabled {
			c.Next()
			return
		}

		allowed, err := rl.allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			rl.logger.Error("rate limit check failed", zap.Error(err))
			if !rl.cfg.FailOpen {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"code":    "RATE_LIMITER_UNAVAILABLE",
					"message": "rate limiting temporarily unavailable",
				})
				return
			}
			allowed = true
		}

		if !allowed {
			metrics.RateLimitHitsTotal.WithLabelValues("ip").Inc()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":       "RATE_LIMIT_EXCEEDED",
				"message":    "too many requests, please try again later",
				"request_id": c.GetString("request_id"),
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, ip string) (bool, error) {
	if rl.redis != nil {
		return rl.allowRedis(ctx, ip)
	}
	return rl.localLimiter(ip).Allow(), nil
}

// allowRedis counts requests per IP in a one-minute fixed window.
func (rl *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%d", ip, time.Now().Unix()/60)

	pipe := rl.redis.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(rl.cfg.RequestsPerMinute), nil
}

func (rl *RateLimiter) localLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(rl.cfg.RequestsPerMinute)),
			rl.cfg.RequestsPerMinute,
		)
		rl.limiters[ip] = limiter
	}
	return limiter
}

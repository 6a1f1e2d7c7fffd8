package middleware

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitStrategy selects the counting algorithm
type RateLimitStrategy string

const (
	// FixedWindow counts requests per fixed time window. Cheap, but allows
	// a 2x burst across a window boundary.
	FixedWindow RateLimitStrategy = "fixed_window"
	// SlidingWindow tracks request timestamps in a sorted set. Precise at
	// the cost of one member per request.
	SlidingWindow RateLimitStrategy = "sliding_window"
)

// ParseStrategy maps a config string to a strategy, defaulting to sliding
// window for unknown values.
func ParseStrategy(s string) RateLimitStrategy {
	if RateLimitStrategy(s) == FixedWindow {
		return FixedWindow
	}
	return SlidingWindow
}

// RateLimitConfig holds configuration for one rate limiter
type RateLimitConfig struct {
	Strategy RateLimitStrategy
	Limit    int
	Window   time.Duration

	// KeyFunc generates the limit key; defaults to client IP + path
	KeyFunc func(*gin.Context) string
	// SkipFunc exempts a request from limiting
	SkipFunc func(*gin.Context) bool
}

// RateLimiter enforces request limits using Redis counters
type RateLimiter struct {
	redis  *redis.Client
	config *RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config *RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string {
			return "rate_limit:" + c.ClientIP() + ":" + c.FullPath()
		}
	}
	if config.SkipFunc == nil {
		config.SkipFunc = func(*gin.Context) bool { return false }
	}
	return &RateLimiter{redis: redisClient, config: config}
}

// SkipHealthCheck exempts the health endpoint from limiting
func SkipHealthCheck(c *gin.Context) bool {
	return c.Request.URL.Path == "/health"
}

// Middleware returns the Gin middleware function
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.SkipFunc(c) {
			c.Next()
			return
		}

		allowed, remaining, resetAt, err := rl.check(c.Request.Context(), rl.config.KeyFunc(c))
		if err != nil {
			// Fail open: a Redis outage must not take down the service
			log.Printf("rate limiter error (failing open): %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			retryAfter := resetAt - time.Now().Unix()
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(429, gin.H{"error": "Too many requests"})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) check(ctx context.Context, key string) (bool, int, int64, error) {
	if rl.config.Strategy == FixedWindow {
		return rl.fixedWindowCheck(ctx, key)
	}
	return rl.slidingWindowCheck(ctx, key)
}

func (rl *RateLimiter) fixedWindowCheck(ctx context.Context, key string) (bool, int, int64, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window).Unix()
	windowKey := key + ":" + strconv.FormatInt(windowStart, 10)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.config.Window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, err
	}

	count := int(incr.Val())
	resetAt := windowStart + int64(rl.config.Window.Seconds())

	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, resetAt, nil
}

func (rl *RateLimiter) slidingWindowCheck(ctx context.Context, key string) (bool, int, int64, error) {
	now := time.Now()
	windowStart := now.Add(-rl.config.Window).UnixNano()

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, err
	}

	count := int(card.Val())
	resetAt := now.Add(rl.config.Window).Unix()

	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, resetAt, nil
}

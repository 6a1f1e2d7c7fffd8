package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/reviewrelay/review-relay/internal/model"
)

const (
	// linkKeyPrefix namespaces resolved-link payload keys in Redis
	linkKeyPrefix = "review:link:"
	// DefaultTTL is the default TTL for cached payloads (24 hours)
	DefaultTTL = 24 * time.Hour
)

// RedisCache caches resolved short-link payloads so hot redirect codes skip
// the database read. Click counting always goes to MySQL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(addr, password string, db, poolSize int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// GetPayload retrieves a cached payload for a short code. A cache miss
// returns (nil, nil).
func (r *RedisCache) GetPayload(ctx context.Context, shortCode string) (*model.LinkPayload, error) {
	val, err := r.client.Get(ctx, linkKeyPrefix+shortCode).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var payload model.LinkPayload
	if err := json.Unmarshal(val, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode cached payload: %w", err)
	}
	return &payload, nil
}

// SetPayload caches a payload for a short code with the given TTL
func (r *RedisCache) SetPayload(ctx context.Context, shortCode string, payload *model.LinkPayload, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.client.Set(ctx, linkKeyPrefix+shortCode, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}
	return nil
}

// Delete removes a short code payload from cache
func (r *RedisCache) Delete(ctx context.Context, shortCode string) error {
	if err := r.client.Del(ctx, linkKeyPrefix+shortCode).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for middleware use
func (r *RedisCache) GetClient() *redis.Client {
	return r.client
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client defines the interface for cache operations.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (int64, error)
	Close() error
}

// RedisClient is a wrapper around the Redis client. An empty address yields
// a disabled client whose writes are no-ops and whose reads miss, so callers
// never need to branch on whether caching is configured.
type RedisClient struct {
	client  *redis.Client
	enabled bool
}

// ErrDisabled is returned by reads when caching is not configured.
var ErrDisabled = fmt.Errorf("cache not enabled")

// NewRedisClient creates a new Redis cache client.
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	if addr == "" {
		return &RedisClient{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{
		client:  client,
		enabled: true,
	}, nil
}

// Get retrieves a value from cache.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if !r.enabled {
		return "", ErrDisabled
	}

	return r.client.Get(ctx, key).Result()
}

// Set stores a value in cache with expiration.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !r.enabled {
		return nil
	}

	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys from cache.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if !r.enabled {
		return nil
	}

	return r.client.Del(ctx, keys...).Err()
}

// Exists checks if keys exist in cache.
func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	if !r.enabled {
		return 0, nil
	}

	return r.client.Exists(ctx, keys...).Result()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	if !r.enabled {
		return nil
	}

	return r.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appshipping "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/redis/go-redis/v9"
)

// RedisRateCache implements RateCache using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share quoted carrier rates.
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRateCache creates a new Redis-based rate cache
func NewRedisRateCache(cfg RedisConfig, ttl time.Duration) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateCache{
		client:    client,
		keyPrefix: "carrier:",
		ttl:       ttl,
	}, nil
}

// NewRedisRateCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisRateCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisRateCache {
	if keyPrefix == "" {
		keyPrefix = "carrier:"
	}
	return &RedisRateCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns cached rates for the key, with found=false on a miss
func (c *RedisRateCache) Get(ctx context.Context, key string) ([]shipping.CarrierRate, bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached rates: %w", err)
	}

	var rates []shipping.CarrierRate
	if err := json.Unmarshal(payload, &rates); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached rates: %w", err)
	}
	return rates, true, nil
}

// Put stores the rates under the key with the configured TTL
func (c *RedisRateCache) Put(ctx context.Context, key string, rates []shipping.CarrierRate) error {
	payload, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to encode rates: %w", err)
	}

	if err := c.client.Set(ctx, c.keyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rates: %w", err)
	}
	return nil
}

// Delete removes the rates stored under the key
func (c *RedisRateCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to drop cached rates: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisRateCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisRateCache implements RateCache
var _ appshipping.RateCache = (*RedisRateCache)(nil)

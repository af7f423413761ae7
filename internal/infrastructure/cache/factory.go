package cache

import (
	"fmt"
	"time"

	appshipping "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RateCacheFactory creates rate caches based on configuration
type RateCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateCacheFactoryOption is a functional option for configuring the factory
type RateCacheFactoryOption func(*RateCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateCacheFactoryOption {
	return func(f *RateCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory cache when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) RateCacheFactoryOption {
	return func(f *RateCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateCacheFactory creates a new factory
func NewRateCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...RateCacheFactoryOption) *RateCacheFactory {
	f := &RateCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based rate cache
func (f *RateCacheFactory) CreateRedisCache() (appshipping.RateCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisRateCache(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis rate cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory rate cache
// WARNING: In-memory caches do not share state across process instances,
// so each instance quotes the carrier independently in distributed deployments
func (f *RateCacheFactory) CreateInMemoryCache() appshipping.RateCache {
	return NewInMemoryRateCache(
		WithInMemoryTTL(f.ttl),
		WithInMemoryLogger(f.logger),
	)
}

// CreateCache creates a rate cache based on whether Redis is available
// It tries to create a Redis cache first, and falls back to in-memory if Redis is not available
// and AllowInMemoryFallback is true
func (f *RateCacheFactory) CreateCache() (appshipping.RateCache, error) {
	// Try Redis first
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis rate cache")
		return cache, nil
	}

	// Check if fallback is allowed
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for rate caching but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.logger.Warn("Redis unavailable, falling back to in-memory rate cache. "+
		"Each instance will quote the carrier independently.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}

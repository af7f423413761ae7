package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	appshipping "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/domain/shipping"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultRateTTL         = 10 * time.Minute
)

// InMemoryRateCache implements RateCache using in-memory storage.
// This is suitable for single-instance deployments and testing.
type InMemoryRateCache struct {
	entries sync.Map // map[string]*rateEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{} // Channel to stop the cleanup goroutine
	stopped int32         // Atomic flag to track if cache is stopped

	// Stats for monitoring
	hits   int64
	misses int64
}

// rateEntry wraps cached rates with expiration time
type rateEntry struct {
	rates     []shipping.CarrierRate
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *rateEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryRateCacheOption is a functional option for configuring the cache
type InMemoryRateCacheOption func(*InMemoryRateCache)

// WithInMemoryTTL sets the entry TTL
func WithInMemoryTTL(ttl time.Duration) InMemoryRateCacheOption {
	return func(c *InMemoryRateCache) {
		c.ttl = ttl
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryRateCacheOption {
	return func(c *InMemoryRateCache) {
		c.logger = logger
	}
}

// NewInMemoryRateCache creates a new in-memory rate cache
func NewInMemoryRateCache(opts ...InMemoryRateCacheOption) *InMemoryRateCache {
	cache := &InMemoryRateCache{
		ttl:    defaultRateTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Get returns cached rates for the key, with found=false on a miss
func (c *InMemoryRateCache) Get(ctx context.Context, key string) ([]shipping.CarrierRate, bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*rateEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("rate cache hit", zap.String("key", key))
			return entry.rates, true, nil
		}
		// Expired, remove from cache
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("rate cache miss", zap.String("key", key))
	return nil, false, nil
}

// Put stores the rates under the key with the configured TTL
func (c *InMemoryRateCache) Put(ctx context.Context, key string, rates []shipping.CarrierRate) error {
	entry := &rateEntry{
		rates:     rates,
		expiresAt: time.Now().Add(c.ttl),
	}

	c.entries.Store(key, entry)
	c.logger.Debug("cached rates",
		zap.String("key", key),
		zap.Int("count", len(rates)),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes the rates stored under the key
func (c *InMemoryRateCache) Delete(ctx context.Context, key string) error {
	c.entries.Delete(key)
	c.logger.Debug("dropped cached rates", zap.String("key", key))
	return nil
}

// Stats returns hit and miss counters for monitoring
func (c *InMemoryRateCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the cleanup goroutine
func (c *InMemoryRateCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryRateCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*rateEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryRateCache implements RateCache
var _ appshipping.RateCache = (*InMemoryRateCache)(nil)

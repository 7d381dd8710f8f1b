package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

const defaultCleanupInterval = time.Minute

// cacheEntry holds a value with its expiry
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryTaxCodeCache is a process-local TaxCodeCache used when Redis is not configured
type InMemoryTaxCodeCache struct {
	entries  sync.Map
	logger   *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	hits   int64
	misses int64
}

// InMemoryTaxCodeCacheOption is a functional option for configuring the cache
type InMemoryTaxCodeCacheOption func(*InMemoryTaxCodeCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryTaxCodeCacheOption {
	return func(c *InMemoryTaxCodeCache) {
		c.logger = logger
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(interval time.Duration) InMemoryTaxCodeCacheOption {
	return func(c *InMemoryTaxCodeCache) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// NewInMemoryTaxCodeCache creates the cache and starts its cleanup goroutine
func NewInMemoryTaxCodeCache(opts ...InMemoryTaxCodeCacheOption) *InMemoryTaxCodeCache {
	c := &InMemoryTaxCodeCache{
		logger:   zap.NewNop(),
		interval: defaultCleanupInterval,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupExpired()
	return c
}

// Get returns a copy of the cached tax code
func (c *InMemoryTaxCodeCache) Get(_ context.Context, code string) (*catalog.TaxCode, error) {
	value, ok := c.entries.Load(catalog.NormalizeTaxCode(code))
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	entry := value.(*cacheEntry[catalog.TaxCode])
	if entry.isExpired() {
		c.entries.Delete(catalog.NormalizeTaxCode(code))
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.hits, 1)
	tc := entry.value
	return &tc, nil
}

// Set stores a copy of the tax code
func (c *InMemoryTaxCodeCache) Set(_ context.Context, code *catalog.TaxCode, ttl time.Duration) error {
	if code == nil {
		return nil
	}
	c.entries.Store(catalog.NormalizeTaxCode(code.Code), &cacheEntry[catalog.TaxCode]{
		value:     *code,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a tax code
func (c *InMemoryTaxCodeCache) Delete(_ context.Context, code string) error {
	c.entries.Delete(catalog.NormalizeTaxCode(code))
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryTaxCodeCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryTaxCodeCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included until the next sweep
func (c *InMemoryTaxCodeCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryTaxCodeCache) cleanupExpired() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

func (c *InMemoryTaxCodeCache) doCleanup() {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry[catalog.TaxCode]).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired tax code cache entries", zap.Int("removed", removed))
	}
}

var _ TaxCodeCache = (*InMemoryTaxCodeCache)(nil)

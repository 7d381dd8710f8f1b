package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const taxCodeKeyPrefix = "tax_code:"

// TaxCodeCache stores tax codes by normalized code. Get returns nil, nil on a miss.
type TaxCodeCache interface {
	Get(ctx context.Context, code string) (*catalog.TaxCode, error)
	Set(ctx context.Context, code *catalog.TaxCode, ttl time.Duration) error
	Delete(ctx context.Context, code string) error
	Close() error
}

// RedisTaxCodeCache shares tax codes across instances through Redis
type RedisTaxCodeCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// RedisTaxCodeCacheOption is a functional option for configuring the cache
type RedisTaxCodeCacheOption func(*RedisTaxCodeCache)

// WithRedisKeyPrefix overrides the key prefix
func WithRedisKeyPrefix(prefix string) RedisTaxCodeCacheOption {
	return func(c *RedisTaxCodeCache) {
		c.keyPrefix = prefix
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisTaxCodeCacheOption {
	return func(c *RedisTaxCodeCache) {
		c.logger = logger
	}
}

// NewRedisTaxCodeCache connects to Redis and verifies the connection
func NewRedisTaxCodeCache(cfg config.RedisConfig, opts ...RedisTaxCodeCacheOption) (*RedisTaxCodeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTaxCodeCacheWithClient(client, opts...), nil
}

// NewRedisTaxCodeCacheWithClient wraps an existing client
func NewRedisTaxCodeCacheWithClient(client *redis.Client, opts ...RedisTaxCodeCacheOption) *RedisTaxCodeCache {
	c := &RedisTaxCodeCache{
		client:    client,
		keyPrefix: taxCodeKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisTaxCodeCache) key(code string) string {
	return c.keyPrefix + catalog.NormalizeTaxCode(code)
}

// Get reads a tax code
func (c *RedisTaxCodeCache) Get(ctx context.Context, code string) (*catalog.TaxCode, error) {
	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tax code from cache: %w", err)
	}

	var tc catalog.TaxCode
	if err := json.Unmarshal(data, &tc); err != nil {
		// A corrupt entry is treated as a miss and dropped
		c.logger.Warn("Discarding undecodable tax code cache entry",
			zap.String("code", code),
			zap.Error(err))
		_ = c.client.Del(ctx, c.key(code)).Err()
		return nil, nil
	}
	return &tc, nil
}

// Set writes a tax code with the given TTL
func (c *RedisTaxCodeCache) Set(ctx context.Context, code *catalog.TaxCode, ttl time.Duration) error {
	if code == nil {
		return nil
	}
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to marshal tax code: %w", err)
	}
	if err := c.client.Set(ctx, c.key(code.Code), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set tax code in cache: %w", err)
	}
	return nil
}

// Delete removes a tax code
func (c *RedisTaxCodeCache) Delete(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, c.key(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete tax code from cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisTaxCodeCache) Close() error {
	return c.client.Close()
}

var _ TaxCodeCache = (*RedisTaxCodeCache)(nil)

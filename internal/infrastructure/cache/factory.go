package cache

import (
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// TaxCodeCacheFactory builds the tax code cache for the configured backend
type TaxCodeCacheFactory struct {
	redisConfig      config.RedisConfig
	logger           *zap.Logger
	inMemoryFallback bool
}

// TaxCodeCacheFactoryOption is a functional option for the factory
type TaxCodeCacheFactoryOption func(*TaxCodeCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) TaxCodeCacheFactoryOption {
	return func(f *TaxCodeCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a Redis connection failure falls back to memory
func WithInMemoryFallback(enabled bool) TaxCodeCacheFactoryOption {
	return func(f *TaxCodeCacheFactory) {
		f.inMemoryFallback = enabled
	}
}

// NewTaxCodeCacheFactory creates a factory
func NewTaxCodeCacheFactory(cfg config.RedisConfig, opts ...TaxCodeCacheFactoryOption) *TaxCodeCacheFactory {
	f := &TaxCodeCacheFactory{
		redisConfig:      cfg,
		logger:           zap.NewNop(),
		inMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when enabled and reachable, otherwise an in-memory one
func (f *TaxCodeCacheFactory) CreateCache() (TaxCodeCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory tax code cache")
		return NewInMemoryTaxCodeCache(WithInMemoryLogger(f.logger)), nil
	}

	redisCache, err := NewRedisTaxCodeCache(f.redisConfig, WithRedisLogger(f.logger))
	if err != nil {
		if !f.inMemoryFallback {
			return nil, err
		}
		f.logger.Warn("Failed to connect to Redis, falling back to in-memory tax code cache",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err))
		return NewInMemoryTaxCodeCache(WithInMemoryLogger(f.logger)), nil
	}

	f.logger.Info("Using Redis tax code cache", zap.String("addr", f.redisConfig.Addr()))
	return redisCache, nil
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaxCode(t *testing.T, code string, rate int64) *catalog.TaxCode {
	t.Helper()
	tc, err := catalog.NewTaxCode(code, decimal.NewFromInt(rate), "test")
	require.NoError(t, err)
	return tc
}

func TestInMemoryTaxCodeCache_GetSet(t *testing.T) {
	cache := NewInMemoryTaxCodeCache()
	defer cache.Close()
	ctx := context.Background()

	got, err := cache.Get(ctx, "gst18")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, newTestTaxCode(t, "GST18", 18), time.Minute))

	got, err = cache.Get(ctx, " gst18 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "GST18", got.Code)
	assert.True(t, decimal.NewFromInt(18).Equal(got.Rate))

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryTaxCodeCache_ReturnsCopies(t *testing.T) {
	cache := NewInMemoryTaxCodeCache()
	defer cache.Close()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, newTestTaxCode(t, "GST5", 5), time.Minute))

	first, _ := cache.Get(ctx, "GST5")
	first.Rate = decimal.NewFromInt(99)

	second, _ := cache.Get(ctx, "GST5")
	assert.True(t, decimal.NewFromInt(5).Equal(second.Rate))
}

func TestInMemoryTaxCodeCache_Expiry(t *testing.T) {
	cache := NewInMemoryTaxCodeCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, newTestTaxCode(t, "GST12", 12), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := cache.Get(ctx, "GST12")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, cache.Count())
}

func TestInMemoryTaxCodeCache_CleanupSweepsExpired(t *testing.T) {
	cache := NewInMemoryTaxCodeCache(WithCleanupInterval(5 * time.Millisecond))
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, newTestTaxCode(t, "A", 1), time.Millisecond))
	require.NoError(t, cache.Set(ctx, newTestTaxCode(t, "B", 2), time.Hour))

	assert.Eventually(t, func() bool { return cache.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestInMemoryTaxCodeCache_DeleteAndClose(t *testing.T) {
	cache := NewInMemoryTaxCodeCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, newTestTaxCode(t, "GST28", 28), time.Minute))
	require.NoError(t, cache.Delete(ctx, "gst28"))
	got, _ := cache.Get(ctx, "GST28")
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, nil, time.Minute))
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestTaxCodeCacheFactory_RedisDisabled(t *testing.T) {
	f := NewTaxCodeCacheFactory(configWithRedis(false))
	c, err := f.CreateCache()
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &InMemoryTaxCodeCache{}, c)
}

func TestTaxCodeCacheFactory_FallbackOnUnreachableRedis(t *testing.T) {
	cfg := configWithRedis(true)
	cfg.Port = 1

	c, err := NewTaxCodeCacheFactory(cfg).CreateCache()
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &InMemoryTaxCodeCache{}, c)

	_, err = NewTaxCodeCacheFactory(cfg, WithInMemoryFallback(false)).CreateCache()
	assert.Error(t, err)
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func configWithRedis(enabled bool) config.RedisConfig {
	return config.RedisConfig{Enabled: enabled, Host: "127.0.0.1", Port: 6379}
}

type MockTaxCodeRepository struct {
	mock.Mock
}

func (m *MockTaxCodeRepository) FindByCode(ctx context.Context, code string) (*catalog.TaxCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TaxCode), args.Error(1)
}

func (m *MockTaxCodeRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*catalog.TaxCode, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*catalog.TaxCode), args.Error(1)
}

func (m *MockTaxCodeRepository) List(ctx context.Context, activeOnly bool) ([]catalog.TaxCode, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.TaxCode), args.Error(1)
}

type MockTaxCodeAdmin struct {
	mock.Mock
}

func (m *MockTaxCodeAdmin) Save(ctx context.Context, code *catalog.TaxCode) error {
	return m.Called(ctx, code).Error(0)
}

// failingCache fails every operation
type failingCache struct{}

func (failingCache) Get(context.Context, string) (*catalog.TaxCode, error) {
	return nil, errors.New("down")
}
func (failingCache) Set(context.Context, *catalog.TaxCode, time.Duration) error {
	return errors.New("down")
}
func (failingCache) Delete(context.Context, string) error { return errors.New("down") }
func (failingCache) Close() error                         { return nil }

func TestCachedTaxCodeRepository_FindByCode_ReadThrough(t *testing.T) {
	repo := new(MockTaxCodeRepository)
	mem := NewInMemoryTaxCodeCache()
	defer mem.Close()
	cached := NewCachedTaxCodeRepository(repo, mem, time.Minute, nil)
	ctx := context.Background()

	repo.On("FindByCode", mock.Anything, "GST18").Return(newTestTaxCode(t, "GST18", 18), nil).Once()

	for range 3 {
		tc, err := cached.FindByCode(ctx, "gst18")
		require.NoError(t, err)
		assert.Equal(t, "GST18", tc.Code)
	}
	repo.AssertNumberOfCalls(t, "FindByCode", 1)
}

func TestCachedTaxCodeRepository_FindByCode_NotFoundIsNotCached(t *testing.T) {
	repo := new(MockTaxCodeRepository)
	mem := NewInMemoryTaxCodeCache()
	defer mem.Close()
	cached := NewCachedTaxCodeRepository(repo, mem, time.Minute, nil)

	repo.On("FindByCode", mock.Anything, "NOPE").Return(nil, shared.ErrNotFound)

	_, err := cached.FindByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 0, mem.Count())
}

func TestCachedTaxCodeRepository_FindByCodes_OnlyLoadsMisses(t *testing.T) {
	repo := new(MockTaxCodeRepository)
	mem := NewInMemoryTaxCodeCache()
	defer mem.Close()
	cached := NewCachedTaxCodeRepository(repo, mem, time.Minute, nil)
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, newTestTaxCode(t, "GST5", 5), time.Minute))

	repo.On("FindByCodes", mock.Anything, []string{"GST18", "GONE"}).
		Return(map[string]*catalog.TaxCode{"GST18": newTestTaxCode(t, "GST18", 18)}, nil)

	got, err := cached.FindByCodes(ctx, []string{"gst5", "GST18", "gst18", "GONE", ""})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "GST5")
	assert.Contains(t, got, "GST18")
	assert.Equal(t, 2, mem.Count())

	_, err = cached.FindByCodes(ctx, []string{"GST5", "GST18"})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindByCodes", 1)
}

func TestCachedTaxCodeRepository_FindByCodes_RepeatedMissLoadedOnce(t *testing.T) {
	repo := new(MockTaxCodeRepository)
	mem := NewInMemoryTaxCodeCache()
	defer mem.Close()
	cached := NewCachedTaxCodeRepository(repo, mem, time.Minute, nil)

	repo.On("FindByCodes", mock.Anything, []string{"GONE"}).
		Return(map[string]*catalog.TaxCode{}, nil).Once()

	got, err := cached.FindByCodes(context.Background(), []string{"gone", "GONE", " gone "})
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertExpectations(t)
}

func TestCachedTaxCodeRepository_CacheFailureFallsThrough(t *testing.T) {
	repo := new(MockTaxCodeRepository)
	cached := NewCachedTaxCodeRepository(repo, failingCache{}, time.Minute, nil)
	repo.On("FindByCode", mock.Anything, "GST18").Return(newTestTaxCode(t, "GST18", 18), nil)

	tc, err := cached.FindByCode(context.Background(), "GST18")
	require.NoError(t, err)
	assert.Equal(t, "GST18", tc.Code)
}

func TestInvalidatingTaxCodeAdmin_Save(t *testing.T) {
	admin := new(MockTaxCodeAdmin)
	mem := NewInMemoryTaxCodeCache()
	defer mem.Close()
	ctx := context.Background()
	tc := newTestTaxCode(t, "GST18", 18)
	require.NoError(t, mem.Set(ctx, tc, time.Minute))

	t.Run("failed save keeps the cached copy", func(t *testing.T) {
		admin.On("Save", mock.Anything, tc).Return(errors.New("db down")).Once()
		err := NewInvalidatingTaxCodeAdmin(admin, mem, nil).Save(ctx, tc)
		assert.Error(t, err)
		assert.Equal(t, 1, mem.Count())
	})

	t.Run("successful save evicts", func(t *testing.T) {
		admin.On("Save", mock.Anything, tc).Return(nil).Once()
		require.NoError(t, NewInvalidatingTaxCodeAdmin(admin, mem, nil).Save(ctx, tc))
		got, _ := mem.Get(ctx, "GST18")
		assert.Nil(t, got)
	})
}

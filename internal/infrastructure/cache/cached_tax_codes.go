package cache

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// CachedTaxCodeRepository is a read-through cache in front of a catalog.TaxCodeRepository.
// Cache failures are logged and served from the underlying repository.
type CachedTaxCodeRepository struct {
	repo   catalog.TaxCodeRepository
	cache  TaxCodeCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTaxCodeRepository wraps repo with cache
func NewCachedTaxCodeRepository(repo catalog.TaxCodeRepository, cache TaxCodeCache, ttl time.Duration, logger *zap.Logger) *CachedTaxCodeRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTaxCodeRepository{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// FindByCode returns a single tax code
func (r *CachedTaxCodeRepository) FindByCode(ctx context.Context, code string) (*catalog.TaxCode, error) {
	code = catalog.NormalizeTaxCode(code)
	if tc := r.get(ctx, code); tc != nil {
		return tc, nil
	}
	tc, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	r.set(ctx, tc)
	return tc, nil
}

// FindByCodes returns the known codes among codes; unknown ones are absent from the map
func (r *CachedTaxCodeRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*catalog.TaxCode, error) {
	result := make(map[string]*catalog.TaxCode, len(codes))
	seen := make(map[string]struct{}, len(codes))
	var missing []string
	for _, code := range codes {
		code = catalog.NormalizeTaxCode(code)
		if _, done := seen[code]; done || code == "" {
			continue
		}
		seen[code] = struct{}{}
		if tc := r.get(ctx, code); tc != nil {
			result[code] = tc
			continue
		}
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := r.repo.FindByCodes(ctx, missing)
	if err != nil {
		return nil, err
	}
	for code, tc := range loaded {
		result[code] = tc
		r.set(ctx, tc)
	}
	return result, nil
}

// List is not cached
func (r *CachedTaxCodeRepository) List(ctx context.Context, activeOnly bool) ([]catalog.TaxCode, error) {
	return r.repo.List(ctx, activeOnly)
}

func (r *CachedTaxCodeRepository) get(ctx context.Context, code string) *catalog.TaxCode {
	tc, err := r.cache.Get(ctx, code)
	if err != nil {
		r.logger.Warn("Tax code cache read failed", zap.String("code", code), zap.Error(err))
		return nil
	}
	return tc
}

func (r *CachedTaxCodeRepository) set(ctx context.Context, tc *catalog.TaxCode) {
	if err := r.cache.Set(ctx, tc, r.ttl); err != nil {
		r.logger.Warn("Tax code cache write failed", zap.String("code", tc.Code), zap.Error(err))
	}
}

// InvalidatingTaxCodeAdmin evicts a code from the cache after every save
type InvalidatingTaxCodeAdmin struct {
	admin  catalog.TaxCodeAdmin
	cache  TaxCodeCache
	logger *zap.Logger
}

// NewInvalidatingTaxCodeAdmin wraps admin
func NewInvalidatingTaxCodeAdmin(admin catalog.TaxCodeAdmin, cache TaxCodeCache, logger *zap.Logger) *InvalidatingTaxCodeAdmin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidatingTaxCodeAdmin{admin: admin, cache: cache, logger: logger}
}

// Save persists the code and evicts the cached copy
func (a *InvalidatingTaxCodeAdmin) Save(ctx context.Context, code *catalog.TaxCode) error {
	if err := a.admin.Save(ctx, code); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, code.Code); err != nil {
		a.logger.Warn("Tax code cache eviction failed", zap.String("code", code.Code), zap.Error(err))
	}
	return nil
}

var (
	_ catalog.TaxCodeRepository = (*CachedTaxCodeRepository)(nil)
	_ catalog.TaxCodeAdmin      = (*InvalidatingTaxCodeAdmin)(nil)
)

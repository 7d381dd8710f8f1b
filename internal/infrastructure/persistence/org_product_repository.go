package persistence

import (
	"context"
	"sort"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrgProductRepository implements catalog.OrgProductRepository using GORM
type GormOrgProductRepository struct {
	db *gorm.DB
}

// NewGormOrgProductRepository creates a new GormOrgProductRepository
func NewGormOrgProductRepository(db *gorm.DB) *GormOrgProductRepository {
	return &GormOrgProductRepository{db: db}
}

// FindByID finds an org product by its ID
func (r *GormOrgProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.OrgProduct, error) {
	var product catalog.OrgProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs loads the given products; ids of other organizations are simply absent
func (r *GormOrgProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.OrgProduct, error) {
	out := make(map[uuid.UUID]*catalog.OrgProduct, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []catalog.OrgProduct
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

// LockByIDs takes FOR UPDATE locks in ascending id order so concurrent finalizers
// of overlapping products queue instead of deadlocking.
func (r *GormOrgProductRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	var locked []uuid.UUID
	return r.db.WithContext(ctx).
		Model(&catalog.OrgProduct{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Pluck("id", &locked).Error
}

// List lists the caller's org products
func (r *GormOrgProductRepository) List(ctx context.Context, filter shared.Filter) ([]catalog.OrgProduct, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.OrgProduct{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []catalog.OrgProduct
	if err := paginate(query, filter, orgProductSort).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create inserts a new org product. A duplicate SKU in the organization yields
// shared.ErrAlreadyExists.
func (r *GormOrgProductRepository) Create(ctx context.Context, p *catalog.OrgProduct) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// SaveWithLock updates the product if its stored version is one behind
func (r *GormOrgProductRepository) SaveWithLock(ctx context.Context, p *catalog.OrgProduct) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.OrgProduct{}).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(map[string]any{
			"name":              p.Name,
			"barcode":           p.Barcode,
			"cost_price":        p.CostPrice,
			"selling_price":     p.SellingPrice,
			"status":            p.Status,
			"master_product_id": p.MasterProductID,
			"version":           p.Version,
			"updated_at":        p.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrStaleState
	}
	return nil
}

// ExistsBySKU reports whether the caller's organization already uses sku
func (r *GormOrgProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.OrgProduct{}).
		Where("sku = ?", sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ catalog.OrgProductRepository = (*GormOrgProductRepository)(nil)

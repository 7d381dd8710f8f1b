package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMasterProductRepository implements catalog.MasterProductRepository using GORM.
// The tenant guard limits every read to rows the principal may see.
type GormMasterProductRepository struct {
	db *gorm.DB
}

// NewGormMasterProductRepository creates a new GormMasterProductRepository
func NewGormMasterProductRepository(db *gorm.DB) *GormMasterProductRepository {
	return &GormMasterProductRepository{db: db}
}

// FindByID finds a visible catalog entry
func (r *GormMasterProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MasterProduct, error) {
	var p catalog.MasterProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByIDForUpdate finds a visible catalog entry under a row lock
func (r *GormMasterProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.MasterProduct, error) {
	var p catalog.MasterProduct
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByIDs loads the visible entries among ids
func (r *GormMasterProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.MasterProduct, error) {
	out := make(map[uuid.UUID]*catalog.MasterProduct, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []catalog.MasterProduct
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

// FindPublishedByBarcode returns the oldest approved or auto-passed entry with barcode
func (r *GormMasterProductRepository) FindPublishedByBarcode(ctx context.Context, barcode string) (*catalog.MasterProduct, error) {
	var p catalog.MasterProduct
	if err := r.db.WithContext(ctx).
		Where("barcode = ? AND approval_status IN ?", barcode,
			[]catalog.ApprovalStatus{catalog.ApprovalApproved, catalog.ApprovalAutoPass}).
		Order("created_at ASC").
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List lists visible catalog entries
func (r *GormMasterProductRepository) List(ctx context.Context, filter catalog.MasterProductFilter) ([]catalog.MasterProduct, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.MasterProduct{})
	if filter.Status != "" {
		query = query.Where("approval_status = ?", filter.Status)
	}
	if filter.Barcode != "" {
		query = query.Where("barcode = ?", filter.Barcode)
	}
	if filter.SKU != "" {
		query = query.Where("sku = ?", filter.SKU)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []catalog.MasterProduct
	if err := paginate(query, filter.Filter, masterProductSort).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListLegacyPending returns imported entries still waiting for the backfill, keyed after afterID
func (r *GormMasterProductRepository) ListLegacyPending(ctx context.Context, afterID uuid.UUID, limit int) ([]catalog.MasterProduct, error) {
	var products []catalog.MasterProduct
	if err := r.db.WithContext(ctx).
		Where("legacy_import = ? AND approval_status = ? AND id > ?", true, catalog.ApprovalPending, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create stores a pending submission of the caller's organization
func (r *GormMasterProductRepository) Create(ctx context.Context, p *catalog.MasterProduct) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

var _ catalog.MasterProductRepository = (*GormMasterProductRepository)(nil)

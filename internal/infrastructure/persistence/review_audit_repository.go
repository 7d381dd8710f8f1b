package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReviewAuditRepository reads the governance trail
type GormReviewAuditRepository struct {
	db *gorm.DB
}

// NewGormReviewAuditRepository creates a new GormReviewAuditRepository
func NewGormReviewAuditRepository(db *gorm.DB) *GormReviewAuditRepository {
	return &GormReviewAuditRepository{db: db}
}

// ListByMasterProduct lists transitions of an entry, oldest first
func (r *GormReviewAuditRepository) ListByMasterProduct(ctx context.Context, masterProductID uuid.UUID) ([]catalog.ReviewAuditRecord, error) {
	var records []catalog.ReviewAuditRecord
	if err := r.db.WithContext(ctx).
		Where("master_product_id = ?", masterProductID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

var _ catalog.ReviewAuditRepository = (*GormReviewAuditRepository)(nil)

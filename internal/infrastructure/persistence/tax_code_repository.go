package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormTaxCodeRepository implements catalog.TaxCodeRepository using GORM
type GormTaxCodeRepository struct {
	db *gorm.DB
}

// NewGormTaxCodeRepository creates a new GormTaxCodeRepository
func NewGormTaxCodeRepository(db *gorm.DB) *GormTaxCodeRepository {
	return &GormTaxCodeRepository{db: db}
}

// FindByCode finds a tax code, active or not
func (r *GormTaxCodeRepository) FindByCode(ctx context.Context, code string) (*catalog.TaxCode, error) {
	var tc catalog.TaxCode
	if err := r.db.WithContext(ctx).Where("code = ?", catalog.NormalizeTaxCode(code)).First(&tc).Error; err != nil {
		return nil, translate(err)
	}
	return &tc, nil
}

// FindByCodes loads the known codes among codes
func (r *GormTaxCodeRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*catalog.TaxCode, error) {
	out := make(map[string]*catalog.TaxCode, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	normalized := make([]string, 0, len(codes))
	for _, c := range codes {
		normalized = append(normalized, catalog.NormalizeTaxCode(c))
	}
	var rows []catalog.TaxCode
	if err := r.db.WithContext(ctx).Where("code IN ?", normalized).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].Code] = &rows[i]
	}
	return out, nil
}

// List lists tax codes ordered by code
func (r *GormTaxCodeRepository) List(ctx context.Context, activeOnly bool) ([]catalog.TaxCode, error) {
	query := r.db.WithContext(ctx).Model(&catalog.TaxCode{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var rows []catalog.TaxCode
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ catalog.TaxCodeRepository = (*GormTaxCodeRepository)(nil)

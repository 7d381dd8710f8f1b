package persistence

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSerialUnitRepository implements inventory.SerialUnitRepository using GORM
type GormSerialUnitRepository struct {
	db *gorm.DB
}

// NewGormSerialUnitRepository creates a new GormSerialUnitRepository
func NewGormSerialUnitRepository(db *gorm.DB) *GormSerialUnitRepository {
	return &GormSerialUnitRepository{db: db}
}

// Register inserts new units. A serial already registered for the product yields
// shared.ErrAlreadyExists.
func (r *GormSerialUnitRepository) Register(ctx context.Context, units []*inventory.SerialUnit) error {
	if len(units) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(units).Error)
}

// FindAvailable returns the available units among serials keyed by serial number
func (r *GormSerialUnitRepository) FindAvailable(ctx context.Context, productID uuid.UUID, serials []string) (map[string]*inventory.SerialUnit, error) {
	out := make(map[string]*inventory.SerialUnit, len(serials))
	if len(serials) == 0 {
		return out, nil
	}
	normalized := make([]string, 0, len(serials))
	for _, s := range serials {
		normalized = append(normalized, inventory.NormalizeSerial(s))
	}

	var units []inventory.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("org_product_id = ? AND serial_number IN ? AND status = ?", productID, normalized, inventory.SerialAvailable).
		Find(&units).Error; err != nil {
		return nil, err
	}
	for i := range units {
		out[units[i].SerialNumber] = &units[i]
	}
	return out, nil
}

// MarkSold flips available units to sold. The status guard makes a concurrent sale
// of the same unit change zero rows, which the caller detects through the count.
func (r *GormSerialUnitRepository) MarkSold(ctx context.Context, productID uuid.UUID, serials []string, invoiceID uuid.UUID) (int64, error) {
	if len(serials) == 0 {
		return 0, nil
	}
	normalized := make([]string, 0, len(serials))
	for _, s := range serials {
		normalized = append(normalized, inventory.NormalizeSerial(s))
	}
	result := r.db.WithContext(ctx).
		Model(&inventory.SerialUnit{}).
		Where("org_product_id = ? AND serial_number IN ? AND status = ?", productID, normalized, inventory.SerialAvailable).
		Updates(map[string]any{
			"status":     inventory.SerialSold,
			"invoice_id": invoiceID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseByInvoice makes the units sold on an invoice available again
func (r *GormSerialUnitRepository) ReleaseByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&inventory.SerialUnit{}).
		Where("invoice_id = ? AND status = ?", invoiceID, inventory.SerialSold).
		Updates(map[string]any{
			"status":     inventory.SerialAvailable,
			"invoice_id": nil,
			"updated_at": time.Now(),
		}).Error
}

// CountAvailable counts sellable units of a product
func (r *GormSerialUnitRepository) CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.SerialUnit{}).
		Where("org_product_id = ? AND status = ?", productID, inventory.SerialAvailable).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.SerialUnitRepository = (*GormSerialUnitRepository)(nil)

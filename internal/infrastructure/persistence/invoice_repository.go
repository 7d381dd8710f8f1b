package persistence

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements trade.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID loads an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	var inv trade.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Where("id = ?", id).
		First(&inv).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

// FindByIDForUpdate loads an invoice under a row lock
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	var inv trade.Invoice
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&inv).Error; err != nil {
		return nil, translate(err)
	}
	var lines []trade.InvoiceLine
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", inv.ID).
		Order("line_no ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	inv.Lines = lines
	return &inv, nil
}

// List lists invoice headers without lines
func (r *GormInvoiceRepository) List(ctx context.Context, filter trade.InvoiceFilter) ([]trade.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Invoice{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(number) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invoices []trade.Invoice
	if err := paginate(query, filter.Filter, invoiceSort).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Create inserts the invoice with its lines
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *trade.Invoice) error {
	return translate(r.db.WithContext(ctx).Create(inv).Error)
}

// SaveDraft writes the draft header and replaces every line. The caller should run it
// inside a transaction.
func (r *GormInvoiceRepository) SaveDraft(ctx context.Context, inv *trade.Invoice, expectedVersion int) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&trade.Invoice{}).
		Where("id = ? AND version = ? AND status = ?", inv.ID, expectedVersion, trade.InvoiceDraft).
		Updates(map[string]any{
			"customer_link_id": inv.CustomerLinkID,
			"notes":            inv.Notes,
			"subtotal":         inv.Subtotal,
			"tax_component_a":  inv.TaxComponentA,
			"tax_component_b":  inv.TaxComponentB,
			"cross_tax":        inv.CrossTax,
			"total":            inv.Total,
			"version":          expectedVersion + 1,
			"updated_at":       inv.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrStaleState
	}
	inv.Version = expectedVersion + 1

	if err := db.Where("invoice_id = ?", inv.ID).Delete(&trade.InvoiceLine{}).Error; err != nil {
		return err
	}
	if len(inv.Lines) == 0 {
		return nil
	}
	return translate(db.Create(&inv.Lines).Error)
}

// SaveState writes the header and computed line values after finalize or cancel
func (r *GormInvoiceRepository) SaveState(ctx context.Context, inv *trade.Invoice, expectedVersion int, expectedStatus trade.InvoiceStatus) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&trade.Invoice{}).
		Where("id = ? AND version = ? AND status = ?", inv.ID, expectedVersion, expectedStatus).
		Updates(map[string]any{
			"number":          inv.Number,
			"status":          inv.Status,
			"tax_mode":        inv.TaxMode,
			"place_of_supply": inv.PlaceOfSupply,
			"subtotal":        inv.Subtotal,
			"tax_component_a": inv.TaxComponentA,
			"tax_component_b": inv.TaxComponentB,
			"cross_tax":       inv.CrossTax,
			"total":           inv.Total,
			"finalized_at":    inv.FinalizedAt,
			"finalized_by":    inv.FinalizedBy,
			"cancelled_at":    inv.CancelledAt,
			"cancel_reason":   inv.CancelReason,
			"version":         inv.Version,
			"updated_at":      inv.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrStaleState
	}
	if expectedStatus != trade.InvoiceDraft {
		return nil
	}

	for _, line := range inv.Lines {
		if err := db.Model(&trade.InvoiceLine{}).
			Where("id = ? AND invoice_id = ?", line.ID, inv.ID).
			Updates(map[string]any{
				"subtotal":        line.Subtotal,
				"tax_rate":        line.TaxRate,
				"tax_component_a": line.TaxComponentA,
				"tax_component_b": line.TaxComponentB,
				"cross_tax":       line.CrossTax,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// NextNumber increments the caller's sequence for day and formats the number. The
// upsert holds the sequence row lock until the surrounding transaction ends, so it
// must run inside the finalize transaction.
func (r *GormInvoiceRepository) NextNumber(ctx context.Context, day time.Time) (string, error) {
	p, ok := access.PrincipalFromContext(ctx)
	if !ok || !p.HasTenant() {
		return "", shared.ErrNoTenant
	}
	key := day.Format("20060102")
	db := r.db.WithContext(ctx)

	seq := InvoiceSequence{TenantID: p.OrgID, Day: key, LastValue: 1}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "day"}},
		DoUpdates: clause.Set{{
			Column: clause.Column{Name: "last_value"},
			Value:  gorm.Expr("invoice_sequences.last_value + 1"),
		}},
	}).Create(&seq).Error; err != nil {
		return "", err
	}

	var stored InvoiceSequence
	if err := db.Where("day = ?", key).First(&stored).Error; err != nil {
		return "", translate(err)
	}
	return trade.FormatInvoiceNumber(day, stored.LastValue), nil
}

var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)

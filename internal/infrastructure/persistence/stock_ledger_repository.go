package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockLedgerRepository implements inventory.StockLedgerRepository using GORM
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// Append inserts ledger entries; entries are never updated
func (r *GormStockLedgerRepository) Append(ctx context.Context, entries ...*inventory.StockLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(entries).Error)
}

type onHandRow struct {
	OrgProductID uuid.UUID
	OnHand       decimal.Decimal
}

// SumOnHand returns the on-hand quantity of each product
func (r *GormStockLedgerRepository) SumOnHand(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		out[id] = decimal.Zero
	}
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []onHandRow
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockLedgerEntry{}).
		Select("org_product_id, COALESCE(SUM(quantity), 0) AS on_hand").
		Where("org_product_id IN ?", productIDs).
		Group("org_product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrgProductID] = row.OnHand
	}
	return out, nil
}

// ListByProduct lists movements of a product, newest first
func (r *GormStockLedgerRepository) ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockLedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockLedgerEntry{}).Where("org_product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []inventory.StockLedgerEntry
	if err := paginate(query, filter, stockLedgerSort).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

var _ inventory.StockLedgerRepository = (*GormStockLedgerRepository)(nil)

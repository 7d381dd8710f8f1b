package inventory

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedgerRepository is the append-only stock ledger of the caller's organization
type StockLedgerRepository interface {
	Append(ctx context.Context, entries ...*StockLedgerEntry) error
	// SumOnHand returns the on-hand quantity for each product; missing products are zero
	SumOnHand(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockLedgerEntry, int64, error)
}

// SerialUnitRepository persists serial units of the caller's organization
type SerialUnitRepository interface {
	Register(ctx context.Context, units []*SerialUnit) error
	// FindAvailable returns the available units among serials, keyed by serial number
	FindAvailable(ctx context.Context, productID uuid.UUID, serials []string) (map[string]*SerialUnit, error)
	// MarkSold flips available units to sold and returns how many rows changed
	MarkSold(ctx context.Context, productID uuid.UUID, serials []string, invoiceID uuid.UUID) (int64, error)
	ReleaseByInvoice(ctx context.Context, invoiceID uuid.UUID) error
	CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error)
}

package trade

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status InvoiceStatus
}

// InvoiceRepository persists invoices of the caller's organization
type InvoiceRepository interface {
	// FindByID loads the invoice with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the invoice under a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	Create(ctx context.Context, invoice *Invoice) error
	// SaveDraft writes header fields and replaces all lines
	SaveDraft(ctx context.Context, invoice *Invoice, expectedVersion int) error
	// SaveState writes header and computed line values after finalize or cancel
	SaveState(ctx context.Context, invoice *Invoice, expectedVersion int, expectedStatus InvoiceStatus) error
	// NextNumber allocates the next per-organization sequence for the day
	NextNumber(ctx context.Context, day time.Time) (string, error)
}

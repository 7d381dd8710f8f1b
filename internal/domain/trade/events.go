package trade

import (
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeInvoiceFinalized = "InvoiceFinalized"
	EventTypeInvoiceCancelled = "InvoiceCancelled"

	aggregateTypeInvoice = "Invoice"
)

// InvoiceFinalizedEvent is raised after an invoice is finalized
type InvoiceFinalizedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
	Lines  int             `json:"lines"`
}

// NewInvoiceFinalizedEvent creates the event
func NewInvoiceFinalizedEvent(i *Invoice) *InvoiceFinalizedEvent {
	var number string
	if i.Number != nil {
		number = *i.Number
	}
	return &InvoiceFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceFinalized, aggregateTypeInvoice, i.ID, i.TenantID),
		Number:          number,
		Total:           i.Total,
		Lines:           len(i.Lines),
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	Reversed bool   `json:"reversed"`
	Reason   string `json:"reason"`
}

// NewInvoiceCancelledEvent creates the event
func NewInvoiceCancelledEvent(i *Invoice, reversed bool) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, aggregateTypeInvoice, i.ID, i.TenantID),
		Reversed:        reversed,
		Reason:          i.CancelReason,
	}
}

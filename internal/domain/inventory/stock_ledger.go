package inventory

import (
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock ledger entry
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// SourceType identifies what produced a ledger entry
type SourceType string

const (
	SourceManual        SourceType = "manual"
	SourceInvoice       SourceType = "invoice"
	SourceInvoiceCancel SourceType = "invoice_cancel"
)

// StockLedgerEntry is one append-only stock movement. On-hand quantity of a product
// is the sum of Quantity over its entries; outbound entries carry negative quantities.
type StockLedgerEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrgProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MovementType MovementType    `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceType   SourceType      `gorm:"type:varchar(30);not null"`
	SourceID     *uuid.UUID      `gorm:"type:uuid;index"`
	Note         string          `gorm:"type:varchar(500)"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// Movement is the input for a ledger entry
type Movement struct {
	TenantID     uuid.UUID
	OrgProductID uuid.UUID
	Quantity     decimal.Decimal
	SourceType   SourceType
	SourceID     *uuid.UUID
	Note         string
	CreatedBy    *uuid.UUID
}

func (m Movement) entry(t MovementType, qty decimal.Decimal) (*StockLedgerEntry, error) {
	if m.TenantID == uuid.Nil || m.OrgProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization and product are required")
	}
	source := m.SourceType
	if source == "" {
		source = SourceManual
	}
	note := shared.TruncateRunes(strings.TrimSpace(m.Note), 500)
	return &StockLedgerEntry{
		ID:           uuid.New(),
		TenantID:     m.TenantID,
		OrgProductID: m.OrgProductID,
		MovementType: t,
		Quantity:     qty,
		SourceType:   source,
		SourceID:     m.SourceID,
		Note:         note,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    time.Now(),
	}, nil
}

// NewStockIn records received stock
func NewStockIn(m Movement) (*StockLedgerEntry, error) {
	if !m.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Inbound quantity must be positive")
	}
	return m.entry(MovementIn, m.Quantity)
}

// NewStockOut records issued stock; the stored quantity is negative
func NewStockOut(m Movement) (*StockLedgerEntry, error) {
	if !m.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Outbound quantity must be positive")
	}
	return m.entry(MovementOut, m.Quantity.Neg())
}

// NewStockAdjustment records a signed correction
func NewStockAdjustment(m Movement) (*StockLedgerEntry, error) {
	if m.Quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Adjustment quantity cannot be zero")
	}
	return m.entry(MovementAdjustment, m.Quantity)
}

// OnHand sums a set of entries
func OnHand(entries []StockLedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

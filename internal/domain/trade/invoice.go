package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceFinalized InvoiceStatus = "finalized"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// MaxInvoiceLines bounds a single invoice
const MaxInvoiceLines = 500

// ItemInput is one requested invoice line
type ItemInput struct {
	OrgProductID uuid.UUID
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Serials      []string
}

// Invoice is a tenant-scoped sales document. Finalized invoices are immutable except
// through cancellation.
type Invoice struct {
	shared.TenantAggregateRoot
	Number         *string         `gorm:"type:varchar(40)"`
	CustomerLinkID *uuid.UUID      `gorm:"type:uuid;index"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	TaxMode        TaxMode         `gorm:"type:varchar(30)"`
	PlaceOfSupply  string          `gorm:"type:varchar(2)"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxComponentA  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxComponentB  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CrossTax       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	FinalizedAt    *time.Time
	FinalizedBy    *uuid.UUID `gorm:"type:uuid"`
	CancelledAt    *time.Time
	CancelReason   string        `gorm:"type:varchar(500)"`
	Lines          []InvoiceLine `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine is one line of an invoice
type InvoiceLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null"`
	OrgProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Serials       []string        `gorm:"type:text;serializer:json"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	TaxComponentA decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxComponentB decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CrossTax      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Tax returns the line's stored tax components
func (l *InvoiceLine) Tax() LineTax {
	return LineTax{ComponentA: l.TaxComponentA, ComponentB: l.TaxComponentB, Cross: l.CrossTax}
}

// NewDraftInvoice creates an empty draft for the organization
func NewDraftInvoice(tenantID, createdBy uuid.UUID, customerLinkID *uuid.UUID) *Invoice {
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, createdBy),
		CustomerLinkID:      customerLinkID,
		Status:              InvoiceDraft,
	}
}

// IsDraft reports whether the invoice can still be edited
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceDraft
}

// IsFinalized reports whether the invoice has been finalized
func (i *Invoice) IsFinalized() bool {
	return i.Status == InvoiceFinalized
}

// CheckShape validates the structure of requested lines without reading any state
func CheckShape(items []ItemInput) error {
	if len(items) > MaxInvoiceLines {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("An invoice cannot have more than %d lines", MaxInvoiceLines))
	}
	for idx, item := range items {
		if item.OrgProductID == uuid.Nil {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d has no product", idx+1))
		}
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d has a negative unit price", idx+1))
		}
	}
	return nil
}

// ReplaceLines is the draft autosave: the lines are replaced wholesale and only the
// shape is checked. Tax components stay zero until finalization.
func (i *Invoice) ReplaceLines(items []ItemInput) error {
	if !i.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft invoices can be edited")
	}
	if err := CheckShape(items); err != nil {
		return err
	}

	lines := make([]InvoiceLine, 0, len(items))
	subtotal := decimal.Zero
	for idx, item := range items {
		line := InvoiceLine{
			ID:           uuid.New(),
			TenantID:     i.TenantID,
			InvoiceID:    i.ID,
			LineNo:       idx + 1,
			OrgProductID: item.OrgProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Serials:      normalizeSerials(item.Serials),
			Subtotal:     valueobject.RoundCurrency(item.Quantity.Mul(item.UnitPrice)),
		}
		subtotal = subtotal.Add(line.Subtotal)
		lines = append(lines, line)
	}

	i.Lines = lines
	i.Subtotal = subtotal
	i.TaxComponentA = decimal.Zero
	i.TaxComponentB = decimal.Zero
	i.CrossTax = decimal.Zero
	i.Total = subtotal
	i.Touch()
	return nil
}

// Items returns the lines as validator input
func (i *Invoice) Items() []ItemInput {
	items := make([]ItemInput, len(i.Lines))
	for idx, l := range i.Lines {
		items[idx] = ItemInput{
			OrgProductID: l.OrgProductID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Serials:      l.Serials,
		}
	}
	return items
}

// SetCustomer changes the customer of a draft
func (i *Invoice) SetCustomer(customerLinkID *uuid.UUID) error {
	if !i.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft invoices can be edited")
	}
	i.CustomerLinkID = customerLinkID
	i.Touch()
	return nil
}

// FinalizeInput carries what finalization needs beyond the invoice itself
type FinalizeInput struct {
	Number        string
	Mode          TaxMode
	PlaceOfSupply valueobject.Jurisdiction
	// Rates holds the resolved tax rate percent per org product
	Rates   map[uuid.UUID]decimal.Decimal
	ActorID uuid.UUID
	Now     time.Time
}

// Finalize computes line taxes and totals and freezes the invoice. Validation of stock,
// serials and governance is the caller's job and must have passed.
func (i *Invoice) Finalize(in FinalizeInput) error {
	if !i.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft invoices can be finalized")
	}
	if len(i.Lines) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invoice has no lines")
	}
	if strings.TrimSpace(in.Number) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invoice number is required")
	}

	subtotal, taxA, taxB, cross := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for idx := range i.Lines {
		line := &i.Lines[idx]
		rate, ok := in.Rates[line.OrgProductID]
		if !ok {
			return shared.ErrMissingTaxCode
		}
		line.Subtotal = valueobject.RoundCurrency(line.Quantity.Mul(line.UnitPrice))
		tax := ComputeLineTax(line.Subtotal, rate, in.Mode)
		line.TaxRate = rate
		line.TaxComponentA = tax.ComponentA
		line.TaxComponentB = tax.ComponentB
		line.CrossTax = tax.Cross

		subtotal = subtotal.Add(line.Subtotal)
		taxA = taxA.Add(tax.ComponentA)
		taxB = taxB.Add(tax.ComponentB)
		cross = cross.Add(tax.Cross)
	}

	number := in.Number
	now := in.Now
	actor := in.ActorID
	i.Number = &number
	i.TaxMode = in.Mode
	i.PlaceOfSupply = in.PlaceOfSupply.String()
	i.Subtotal = subtotal
	i.TaxComponentA = taxA
	i.TaxComponentB = taxB
	i.CrossTax = cross
	i.Total = subtotal.Add(taxA).Add(taxB).Add(cross)
	i.Status = InvoiceFinalized
	i.FinalizedAt = &now
	i.FinalizedBy = &actor
	i.UpdatedAt = now
	i.IncrementVersion()
	i.AddDomainEvent(NewInvoiceFinalizedEvent(i))
	return nil
}

// Cancel moves the invoice to cancelled. It returns true when the invoice had been
// finalized, in which case the caller must reverse its stock effects.
func (i *Invoice) Cancel(reason string, now time.Time) (bool, error) {
	if i.Status == InvoiceCancelled {
		return false, shared.NewDomainError(shared.CodeInvalidState, "Invoice is already cancelled")
	}
	reverse := i.IsFinalized()
	reason = strings.TrimSpace(reason)
	reason = shared.TruncateRunes(reason, 500)
	i.Status = InvoiceCancelled
	i.CancelReason = reason
	i.CancelledAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()
	i.AddDomainEvent(NewInvoiceCancelledEvent(i, reverse))
	return reverse, nil
}

// FormatInvoiceNumber renders the per-organization daily number
func FormatInvoiceNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%04d", day.Format("20060102"), seq)
}

func normalizeSerials(serials []string) []string {
	if len(serials) == 0 {
		return nil
	}
	out := make([]string, 0, len(serials))
	for _, s := range serials {
		if s = inventory.NormalizeSerial(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package trade

import (
	"time"

	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is one requested invoice line
type ItemRequest struct {
	OrgProductID uuid.UUID       `json:"org_product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Serials      []string        `json:"serials" binding:"omitempty,max=1000,dive,max=100"`
}

// ValidateItemsRequest represents a request to validate invoice lines
type ValidateItemsRequest struct {
	Items      []ItemRequest `json:"items" binding:"required,max=500,dive"`
	AllowDraft bool          `json:"allow_draft"`
}

// SaveDraftRequest creates a draft or autosaves one. Version is required on autosave
// and must be the version the caller last read.
type SaveDraftRequest struct {
	CustomerLinkID *uuid.UUID    `json:"customer_link_id"`
	Notes          string        `json:"notes" binding:"max=2000"`
	Items          []ItemRequest `json:"items" binding:"max=500,dive"`
	Version        int           `json:"version" binding:"min=0"`
}

// CancelInvoiceRequest represents a request to cancel an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// InvoiceListFilter represents the invoice list query
type InvoiceListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft finalized cancelled"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toItemInputs(items []ItemRequest) []trade.ItemInput {
	out := make([]trade.ItemInput, len(items))
	for i, item := range items {
		out[i] = trade.ItemInput{
			OrgProductID: item.OrgProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Serials:      item.Serials,
		}
	}
	return out
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	LineNo        int             `json:"line_no"`
	OrgProductID  uuid.UUID       `json:"org_product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Serials       []string        `json:"serials,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxComponentA decimal.Decimal `json:"tax_component_a"`
	TaxComponentB decimal.Decimal `json:"tax_component_b"`
	CrossTax      decimal.Decimal `json:"cross_tax"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	Number         *string               `json:"number,omitempty"`
	Status         string                `json:"status"`
	CustomerLinkID *uuid.UUID            `json:"customer_link_id,omitempty"`
	TaxMode        string                `json:"tax_mode,omitempty"`
	PlaceOfSupply  string                `json:"place_of_supply,omitempty"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxComponentA  decimal.Decimal       `json:"tax_component_a"`
	TaxComponentB  decimal.Decimal       `json:"tax_component_b"`
	CrossTax       decimal.Decimal       `json:"cross_tax"`
	Total          decimal.Decimal       `json:"total"`
	Notes          string                `json:"notes,omitempty"`
	Lines          []InvoiceLineResponse `json:"lines"`
	FinalizedAt    *time.Time            `json:"finalized_at,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	Version        int                   `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *trade.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			LineNo:        l.LineNo,
			OrgProductID:  l.OrgProductID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Serials:       l.Serials,
			Subtotal:      l.Subtotal,
			TaxRate:       l.TaxRate,
			TaxComponentA: l.TaxComponentA,
			TaxComponentB: l.TaxComponentB,
			CrossTax:      l.CrossTax,
		}
	}
	return InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Status:         string(inv.Status),
		CustomerLinkID: inv.CustomerLinkID,
		TaxMode:        string(inv.TaxMode),
		PlaceOfSupply:  inv.PlaceOfSupply,
		Subtotal:       inv.Subtotal,
		TaxComponentA:  inv.TaxComponentA,
		TaxComponentB:  inv.TaxComponentB,
		CrossTax:       inv.CrossTax,
		Total:          inv.Total,
		Notes:          inv.Notes,
		Lines:          lines,
		FinalizedAt:    inv.FinalizedAt,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		Version:        inv.Version,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

// FinalizeResponse carries the finalized invoice, or the issues that blocked it.
// Invoice is nil exactly when Validation has errors.
type FinalizeResponse struct {
	Invoice    *InvoiceResponse       `json:"invoice,omitempty"`
	Validation trade.ValidationResult `json:"validation"`
}

package catalog

import (
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrgProductRequest represents a request to create an org product.
// Without MasterProductID the product is auto-linked to the shared catalog.
type CreateOrgProductRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=200"`
	SKU             string           `json:"sku" binding:"required,min=1,max=64"`
	Barcode         string           `json:"barcode" binding:"max=64"`
	TrackingMode    string           `json:"tracking_mode" binding:"omitempty,oneof=quantity serial"`
	CostPrice       *decimal.Decimal `json:"cost_price"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	MasterProductID *uuid.UUID       `json:"master_product_id"`
}

// LinkOrgProductRequest links an org product to an existing catalog entry
type LinkOrgProductRequest struct {
	MasterProductID uuid.UUID `json:"master_product_id" binding:"required"`
}

// OrgProductListFilter represents the org product list query
type OrgProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrgProductResponse represents an org product in API responses
type OrgProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Barcode         string          `json:"barcode,omitempty"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	TrackingMode    string          `json:"tracking_mode"`
	Status          string          `json:"status"`
	MasterProductID *uuid.UUID      `json:"master_product_id,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToOrgProductResponse converts an org product to its response
func ToOrgProductResponse(p *catalog.OrgProduct) OrgProductResponse {
	return OrgProductResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		Name:            p.Name,
		SKU:             p.SKU,
		Barcode:         p.Barcode,
		CostPrice:       p.CostPrice,
		SellingPrice:    p.SellingPrice,
		TrackingMode:    string(p.TrackingMode),
		Status:          string(p.Status),
		MasterProductID: p.MasterProductID,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// AutoLinkResponse reports the catalog entry an org product ended up linked to
type AutoLinkResponse struct {
	OrgProductID    uuid.UUID `json:"org_product_id"`
	MasterProductID uuid.UUID `json:"master_product_id"`
	// Created is true when a new pending submission was made
	Created bool `json:"created"`
}

// SubmitMasterProductRequest carries submitter-editable catalog fields
type SubmitMasterProductRequest struct {
	Name      string           `json:"name" binding:"required,min=1,max=200"`
	SKU       string           `json:"sku" binding:"max=64"`
	Barcode   string           `json:"barcode" binding:"max=64"`
	BasePrice decimal.Decimal  `json:"base_price"`
	TaxCode   string           `json:"tax_code" binding:"max=20"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
}

// Fields converts the request into domain fields
func (r SubmitMasterProductRequest) Fields() catalog.MasterProductFields {
	return catalog.MasterProductFields{
		Name:      r.Name,
		SKU:       r.SKU,
		Barcode:   r.Barcode,
		BasePrice: r.BasePrice,
		TaxCode:   r.TaxCode,
		TaxRate:   r.TaxRate,
	}
}

// ReviewRequest is a reviewer's decision on a pending entry
type ReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Note     string `json:"note" binding:"max=2000"`
}

// MasterProductListFilter represents the catalog list query
type MasterProductListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending auto_pass approved rejected"`
	Barcode  string `form:"barcode"`
	SKU      string `form:"sku"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MasterProductResponse represents a catalog entry, already redacted for the caller
type MasterProductResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	SKU              string           `json:"sku"`
	Barcode          *string          `json:"barcode,omitempty"`
	BasePrice        decimal.Decimal  `json:"base_price"`
	TaxCode          *string          `json:"tax_code,omitempty"`
	TaxRate          *decimal.Decimal `json:"tax_rate,omitempty"`
	ApprovalStatus   string           `json:"approval_status"`
	SubmittedByOrgID *uuid.UUID       `json:"submitted_by_org_id,omitempty"`
	SubmittedBy      *uuid.UUID       `json:"submitted_by,omitempty"`
	ReviewedBy       *uuid.UUID       `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
	RejectionNote    string           `json:"rejection_note,omitempty"`
	LegacyImport     bool             `json:"legacy_import"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ToMasterProductResponse converts a catalog entry, redacting what p may not see
func ToMasterProductResponse(m *catalog.MasterProduct, p access.Principal) MasterProductResponse {
	view := m.RedactFor(p)
	return MasterProductResponse{
		ID:               view.ID,
		Name:             view.Name,
		SKU:              view.SKU,
		Barcode:          view.Barcode,
		BasePrice:        view.BasePrice,
		TaxCode:          view.TaxCode,
		TaxRate:          view.TaxRate,
		ApprovalStatus:   string(view.ApprovalStatus),
		SubmittedByOrgID: view.SubmittedByOrgID,
		SubmittedBy:      view.SubmittedBy,
		ReviewedBy:       view.ReviewedBy,
		ReviewedAt:       view.ReviewedAt,
		RejectionNote:    view.RejectionNote,
		LegacyImport:     view.LegacyImport,
		Version:          view.Version,
		CreatedAt:        view.CreatedAt,
		UpdatedAt:        view.UpdatedAt,
	}
}

// TaxRateResponse is the effective rate of a catalog entry
type TaxRateResponse struct {
	MasterProductID uuid.UUID       `json:"master_product_id"`
	Rate            decimal.Decimal `json:"rate"`
	TaxCode         *string         `json:"tax_code,omitempty"`
	// Source is "tax_code" when the active code supplied the rate, else "stored"
	Source string `json:"source"`
}

// Rate sources
const (
	RateSourceTaxCode = "tax_code"
	RateSourceStored  = "stored"
)

// ReviewAuditResponse is one governance transition
type ReviewAuditResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    uuid.UUID  `json:"actor_id"`
	ActorOrgID *uuid.UUID `json:"actor_org_id,omitempty"`
	Action     string     `json:"action"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToReviewAuditResponse converts an audit record; the note follows the rejection note rule
func ToReviewAuditResponse(r *catalog.ReviewAuditRecord, showNote bool) ReviewAuditResponse {
	resp := ReviewAuditResponse{
		ID:         r.ID,
		ActorID:    r.ActorID,
		ActorOrgID: r.ActorOrgID,
		Action:     string(r.Action),
		FromStatus: string(r.FromStatus),
		ToStatus:   string(r.ToStatus),
		CreatedAt:  r.CreatedAt,
	}
	if showNote {
		resp.Note = r.Note
	}
	return resp
}

// BackfillResult summarizes a legacy governance backfill run
type BackfillResult struct {
	Scanned     int `json:"scanned"`
	AutoPassed  int `json:"auto_passed"`
	LeftPending int `json:"left_pending"`
}

// SaveTaxCodeRequest creates or replaces a tax code
type SaveTaxCodeRequest struct {
	Rate        decimal.Decimal `json:"rate" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
	Active      *bool           `json:"active"`
}

// TaxCodeResponse represents a tax code
type TaxCodeResponse struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"active"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToTaxCodeResponse converts a tax code
func ToTaxCodeResponse(t *catalog.TaxCode) TaxCodeResponse {
	return TaxCodeResponse{
		Code:        t.Code,
		Rate:        t.Rate,
		Description: t.Description,
		Active:      t.Active,
		UpdatedAt:   t.UpdatedAt,
	}
}

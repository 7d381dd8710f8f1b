package catalog

import (
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrackingMode decides how stock of an org product is counted
type TrackingMode string

const (
	TrackingQuantity TrackingMode = "quantity"
	TrackingSerial   TrackingMode = "serial"
)

// IsValid reports whether m is a known tracking mode
func (m TrackingMode) IsValid() bool {
	return m == TrackingQuantity || m == TrackingSerial
}

// OrgProductStatus represents whether an org product can be sold
type OrgProductStatus string

const (
	OrgProductActive   OrgProductStatus = "active"
	OrgProductInactive OrgProductStatus = "inactive"
)

// OrgProduct is an organization's sellable SKU, optionally linked to the shared catalog
type OrgProduct struct {
	shared.TenantAggregateRoot
	Name            string           `gorm:"type:varchar(200);not null"`
	SKU             string           `gorm:"type:varchar(64);not null;index"`
	Barcode         string           `gorm:"type:varchar(64);index"`
	CostPrice       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TrackingMode    TrackingMode     `gorm:"type:varchar(20);not null;default:'quantity'"`
	Status          OrgProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	MasterProductID *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (OrgProduct) TableName() string {
	return "org_products"
}

// NewOrgProduct creates an active, unlinked org product
func NewOrgProduct(tenantID, createdBy uuid.UUID, name, sku string, mode TrackingMode) (*OrgProduct, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU cannot exceed 64 characters")
	}
	if mode == "" {
		mode = TrackingQuantity
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tracking mode must be quantity or serial")
	}
	return &OrgProduct{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, createdBy),
		Name:                name,
		SKU:                 sku,
		CostPrice:           decimal.Zero,
		SellingPrice:        decimal.Zero,
		TrackingMode:        mode,
		Status:              OrgProductActive,
	}, nil
}

// SetPrices sets the tenant's cost and selling price
func (p *OrgProduct) SetPrices(cost, selling decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Prices cannot be negative")
	}
	p.CostPrice = cost
	p.SellingPrice = selling
	p.touch()
	return nil
}

// SetBarcode sets the barcode used for catalog matching
func (p *OrgProduct) SetBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if len(barcode) > 64 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Barcode cannot exceed 64 characters")
	}
	p.Barcode = barcode
	p.touch()
	return nil
}

// LinkMaster points the product at a catalog entry. A product keeps its first link.
func (p *OrgProduct) LinkMaster(masterID uuid.UUID) error {
	if masterID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Master product is required")
	}
	if p.MasterProductID != nil && *p.MasterProductID != masterID {
		return shared.NewDomainError(shared.CodeInvalidState, "Product is already linked to another master product")
	}
	p.MasterProductID = &masterID
	p.touch()
	return nil
}

// IsLinked reports whether the product has a master link
func (p *OrgProduct) IsLinked() bool {
	return p.MasterProductID != nil
}

// IsSerialTracked reports whether stock is counted per serial unit
func (p *OrgProduct) IsSerialTracked() bool {
	return p.TrackingMode == TrackingSerial
}

// IsActive reports whether the product can be sold
func (p *OrgProduct) IsActive() bool {
	return p.Status == OrgProductActive
}

// Activate makes the product sellable
func (p *OrgProduct) Activate() error {
	if p.Status == OrgProductActive {
		return shared.NewDomainError(shared.CodeInvalidState, "Product is already active")
	}
	p.Status = OrgProductActive
	p.touch()
	return nil
}

// Deactivate hides the product from new invoices
func (p *OrgProduct) Deactivate() error {
	if p.Status == OrgProductInactive {
		return shared.NewDomainError(shared.CodeInvalidState, "Product is already inactive")
	}
	p.Status = OrgProductInactive
	p.touch()
	return nil
}

// SubmissionFields derives catalog submission fields from the product
func (p *OrgProduct) SubmissionFields() MasterProductFields {
	return MasterProductFields{
		Name:      p.Name,
		SKU:       p.SKU,
		Barcode:   p.Barcode,
		BasePrice: p.SellingPrice,
	}
}

func (p *OrgProduct) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

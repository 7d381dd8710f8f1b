package catalog

import (
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MasterProduct is the tenant-independent identity of a product in the shared catalog
type MasterProduct struct {
	shared.BaseAggregateRoot
	Name             string           `gorm:"type:varchar(200);not null"`
	SKU              string           `gorm:"type:varchar(64);index"`
	Barcode          *string          `gorm:"type:varchar(64);index"`
	BasePrice        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TaxCode          *string          `gorm:"type:varchar(20);index"`
	TaxRate          *decimal.Decimal `gorm:"type:decimal(7,4)"`
	ApprovalStatus   ApprovalStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	SubmittedByOrgID *uuid.UUID       `gorm:"type:uuid;index"`
	SubmittedBy      *uuid.UUID       `gorm:"type:uuid"`
	ReviewedBy       *uuid.UUID       `gorm:"type:uuid"`
	ReviewedAt       *time.Time
	RejectionNote    string `gorm:"type:text"`
	LegacyImport     bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MasterProduct) TableName() string {
	return "master_products"
}

// MasterProductFields are the submitter-editable attributes
type MasterProductFields struct {
	Name      string
	SKU       string
	Barcode   string
	BasePrice decimal.Decimal
	TaxCode   string
	TaxRate   *decimal.Decimal
}

func (f MasterProductFields) validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if shared.RuneLen(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot exceed 200 characters")
	}
	if len(f.SKU) > 64 || len(f.Barcode) > 64 {
		return shared.NewDomainError(shared.CodeInvalidInput, "SKU and barcode cannot exceed 64 characters")
	}
	if f.BasePrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Base price cannot be negative")
	}
	if f.TaxRate != nil && !valueobject.ValidRatePercent(*f.TaxRate) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100 percent")
	}
	return nil
}

func (p *MasterProduct) applyFields(f MasterProductFields) {
	p.Name = strings.TrimSpace(f.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(f.SKU))
	p.Barcode = optionalString(f.Barcode)
	p.BasePrice = f.BasePrice
	if code := NormalizeTaxCode(f.TaxCode); code != "" {
		p.TaxCode = &code
	} else {
		p.TaxCode = nil
	}
	p.TaxRate = f.TaxRate
}

// NewMasterProductSubmission creates a pending catalog entry submitted by an organization
func NewMasterProductSubmission(orgID, principalID uuid.UUID, fields MasterProductFields) (*MasterProduct, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}
	p := &MasterProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ApprovalStatus:    ApprovalPending,
		SubmittedByOrgID:  &orgID,
		SubmittedBy:       &principalID,
	}
	p.applyFields(fields)
	p.AddDomainEvent(NewMasterProductSubmittedEvent(p))
	return p, nil
}

// NewLegacyMasterProduct creates an imported entry awaiting the governance backfill
func NewLegacyMasterProduct(fields MasterProductFields) (*MasterProduct, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}
	p := &MasterProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ApprovalStatus:    ApprovalPending,
		LegacyImport:      true,
	}
	p.applyFields(fields)
	return p, nil
}

// Transition is the result of a governance state change
type Transition struct {
	From   ApprovalStatus
	To     ApprovalStatus
	Action ReviewAction
}

// Apply moves the entry through the transition table and records reviewer metadata.
// It does not persist anything; the caller must store the entry and the audit record
// in one unit of work.
func (p *MasterProduct) Apply(action ReviewAction, actorID uuid.UUID, note string, now time.Time) (Transition, error) {
	from := p.ApprovalStatus
	to, err := NextStatus(from, action)
	if err != nil {
		return Transition{}, err
	}

	switch action {
	case ActionApprove, ActionReject, ActionAutoPass:
		p.ReviewedBy = &actorID
		p.ReviewedAt = &now
		if action == ActionReject {
			p.RejectionNote = strings.TrimSpace(note)
		}
	case ActionResubmit:
		p.ReviewedBy = nil
		p.ReviewedAt = nil
		p.RejectionNote = ""
	}

	p.ApprovalStatus = to
	p.UpdatedAt = now
	p.IncrementVersion()

	t := Transition{From: from, To: to, Action: action}
	p.AddDomainEvent(NewMasterProductStatusChangedEvent(p, t, actorID))
	return t, nil
}

// Amend replaces the submitter-editable fields of a pending or rejected entry
func (p *MasterProduct) Amend(fields MasterProductFields) error {
	if p.ApprovalStatus.IsPublished() {
		return shared.NewDomainError(shared.CodeInvalidState, "Published catalog entries cannot be amended")
	}
	if err := fields.validate(); err != nil {
		return err
	}
	p.applyFields(fields)
	p.UpdatedAt = time.Now()
	return nil
}

// Resubmit amends a rejected entry and moves it back to pending
func (p *MasterProduct) Resubmit(principalID uuid.UUID, fields MasterProductFields, now time.Time) (Transition, error) {
	if p.ApprovalStatus != ApprovalRejected {
		_, err := NextStatus(p.ApprovalStatus, ActionResubmit)
		return Transition{}, err
	}
	if err := p.Amend(fields); err != nil {
		return Transition{}, err
	}
	p.SubmittedBy = &principalID
	return p.Apply(ActionResubmit, principalID, "", now)
}

// SubmittingOrg returns the submitting organization or uuid.Nil for platform entries
func (p *MasterProduct) SubmittingOrg() uuid.UUID {
	if p.SubmittedByOrgID == nil {
		return uuid.Nil
	}
	return *p.SubmittedByOrgID
}

// AccessResource describes the entry to the access predicate
func (p *MasterProduct) AccessResource() access.Resource {
	return access.Resource{
		Kind:      access.KindMasterProduct,
		OrgID:     p.SubmittingOrg(),
		Published: p.ApprovalStatus.IsPublished(),
	}
}

// RedactFor returns a copy safe to show to the principal
func (p *MasterProduct) RedactFor(principal access.Principal) MasterProduct {
	view := *p
	if !access.CanSeeRejectionNote(principal, p.SubmittingOrg()) {
		view.RejectionNote = ""
	}
	return view
}

// EffectiveTaxRate resolves the rate from the referenced tax code when it is known and
// active, else from the stored rate. The second result is false when neither exists.
func (p *MasterProduct) EffectiveTaxRate(code *TaxCode) (decimal.Decimal, bool) {
	if code != nil && code.Active {
		return code.Rate, true
	}
	if p.TaxRate != nil {
		return *p.TaxRate, true
	}
	return decimal.Zero, false
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

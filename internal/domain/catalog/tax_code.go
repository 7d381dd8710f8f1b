package catalog

import (
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxCode maps a classification code (HSN-style) to a rate in percent.
// Tenants only read this table; platform admins maintain it.
type TaxCode struct {
	Code        string          `gorm:"type:varchar(20);primaryKey"`
	Rate        decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	Description string          `gorm:"type:varchar(500)"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxCode) TableName() string {
	return "tax_codes"
}

// NormalizeTaxCode trims and upper-cases a tax code reference
func NormalizeTaxCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewTaxCode creates an active tax code
func NewTaxCode(code string, rate decimal.Decimal, description string) (*TaxCode, error) {
	code = NormalizeTaxCode(code)
	if code == "" || len(code) > 20 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tax code must be 1-20 characters")
	}
	if !valueobject.ValidRatePercent(rate) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100 percent")
	}
	now := time.Now()
	return &TaxCode{
		Code:        code,
		Rate:        rate,
		Description: description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update replaces rate, description and active flag
func (t *TaxCode) Update(rate decimal.Decimal, description string, active bool) error {
	if !valueobject.ValidRatePercent(rate) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100 percent")
	}
	t.Rate = rate
	t.Description = description
	t.Active = active
	t.UpdatedAt = time.Now()
	return nil
}

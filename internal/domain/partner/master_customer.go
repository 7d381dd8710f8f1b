package partner

import (
	"strings"
	"time"
	"unicode"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MasterCustomer is the tenant-independent identity of a customer. It is only created
// by the deduplicating upsert and its legal name is never overwritten from that path.
type MasterCustomer struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	LegalName         string    `gorm:"type:varchar(200);not null"`
	Mobile            *string   `gorm:"type:varchar(20);uniqueIndex"`
	TaxRegistrationNo *string   `gorm:"column:tax_registration_no;type:varchar(20);uniqueIndex"`
	StateCode         *string   `gorm:"type:varchar(4)"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MasterCustomer) TableName() string {
	return "master_customers"
}

// NaturalKey is the identifying data of a customer across organizations
type NaturalKey struct {
	Mobile            string
	TaxRegistrationNo string
}

// NormalizeNaturalKey canonicalizes both identifiers. The result must carry at least
// one identifier, else shared.ErrIdentifierRequired is returned.
func NormalizeNaturalKey(mobile, taxReg string) (NaturalKey, error) {
	key := NaturalKey{
		Mobile:            NormalizeMobile(mobile),
		TaxRegistrationNo: NormalizeTaxRegistration(taxReg),
	}
	if key.Mobile == "" && key.TaxRegistrationNo == "" {
		return NaturalKey{}, shared.ErrIdentifierRequired
	}
	if digits := len(strings.TrimPrefix(key.Mobile, "+")); key.Mobile != "" && (digits < 7 || digits > 15) {
		return NaturalKey{}, shared.NewDomainError(shared.CodeInvalidInput, "Mobile number must have 7 to 15 digits")
	}
	if key.TaxRegistrationNo != "" && len(key.TaxRegistrationNo) > 20 {
		return NaturalKey{}, shared.NewDomainError(shared.CodeInvalidInput, "Tax registration number cannot exceed 20 characters")
	}
	return key, nil
}

// NormalizeMobile keeps digits and a leading plus sign
func NormalizeMobile(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	var b strings.Builder
	for i, r := range mobile {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// NormalizeTaxRegistration upper-cases and strips whitespace
func NormalizeTaxRegistration(taxReg string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, taxReg)
}

// NewMasterCustomer creates a master customer for a normalized key
func NewMasterCustomer(key NaturalKey, legalName, stateCode string) (*MasterCustomer, error) {
	legalName = strings.Join(strings.Fields(norm.NFC.String(legalName)), " ")
	if legalName == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Legal name cannot be empty")
	}
	if shared.RuneLen(legalName) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Legal name cannot exceed 200 characters")
	}
	if key.Mobile == "" && key.TaxRegistrationNo == "" {
		return nil, shared.ErrIdentifierRequired
	}

	c := &MasterCustomer{
		ID:        uuid.New(),
		LegalName: legalName,
		CreatedAt: time.Now(),
	}
	if key.Mobile != "" {
		m := key.Mobile
		c.Mobile = &m
	}
	if key.TaxRegistrationNo != "" {
		t := key.TaxRegistrationNo
		c.TaxRegistrationNo = &t
	}
	if stateCode != "" {
		j, ok := valueobject.ParseJurisdiction(stateCode)
		if !ok {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown state code: "+stateCode)
		}
		s := j.String()
		c.StateCode = &s
	}
	return c, nil
}

// Jurisdiction is the customer's registered state: the stored state code when present,
// else the prefix of the tax registration number. ok is false when neither resolves.
func (c *MasterCustomer) Jurisdiction() (valueobject.Jurisdiction, bool) {
	if c.StateCode != nil {
		if j, ok := valueobject.ParseJurisdiction(*c.StateCode); ok {
			return j, true
		}
	}
	if c.TaxRegistrationNo != nil {
		return valueobject.JurisdictionFromTaxRegistration(*c.TaxRegistrationNo)
	}
	return "", false
}

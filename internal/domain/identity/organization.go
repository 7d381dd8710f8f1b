package identity

import (
	"strings"
	"time"
	"unicode"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OrganizationStatus represents the lifecycle of an organization. Organizations are
// never hard-deleted; archived is the terminal soft state.
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
	OrganizationStatusArchived  OrganizationStatus = "archived"
)

// Organization is a tenant
type Organization struct {
	shared.BaseAggregateRoot
	Name                   string                   `gorm:"type:varchar(200);not null"`
	Slug                   string                   `gorm:"type:varchar(100);not null;uniqueIndex"`
	HomeJurisdiction       valueobject.Jurisdiction `gorm:"type:varchar(4);not null"`
	TaxRegistrationEnabled bool                     `gorm:"not null;default:false"`
	Status                 OrganizationStatus       `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates an active organization. An empty slug is derived from the name.
func NewOrganization(name, slug, homeJurisdiction string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization name cannot be empty")
	}
	if shared.RuneLen(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization name cannot exceed 200 characters")
	}
	if slug == "" {
		slug = name
	}
	normalized := Slugify(slug)
	if normalized == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization slug must contain letters or digits")
	}
	j, ok := valueobject.ParseJurisdiction(homeJurisdiction)
	if !ok {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown home jurisdiction: "+homeJurisdiction)
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              normalized,
		HomeJurisdiction:  j,
		Status:            OrganizationStatusActive,
	}, nil
}

// Rename changes the display name
func (o *Organization) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Organization name cannot be empty")
	}
	o.Name = name
	o.touch()
	return nil
}

// SetHomeJurisdiction changes the state used for the tax split
func (o *Organization) SetHomeJurisdiction(code string) error {
	j, ok := valueobject.ParseJurisdiction(code)
	if !ok {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unknown home jurisdiction: "+code)
	}
	o.HomeJurisdiction = j
	o.touch()
	return nil
}

// EnableTaxRegistration toggles tax registration for the organization
func (o *Organization) EnableTaxRegistration(enabled bool) {
	o.TaxRegistrationEnabled = enabled
	o.touch()
}

// Suspend moves an active organization to suspended
func (o *Organization) Suspend() error {
	if o.Status != OrganizationStatusActive {
		return shared.NewDomainError(shared.CodeInvalidState, "Only active organizations can be suspended")
	}
	o.Status = OrganizationStatusSuspended
	o.touch()
	return nil
}

// Reactivate moves a suspended organization back to active
func (o *Organization) Reactivate() error {
	if o.Status != OrganizationStatusSuspended {
		return shared.NewDomainError(shared.CodeInvalidState, "Only suspended organizations can be reactivated")
	}
	o.Status = OrganizationStatusActive
	o.touch()
	return nil
}

// Archive is the terminal soft-delete
func (o *Organization) Archive() error {
	if o.Status == OrganizationStatusArchived {
		return shared.NewDomainError(shared.CodeInvalidState, "Organization is already archived")
	}
	o.Status = OrganizationStatusArchived
	o.touch()
	return nil
}

// IsActive reports whether the organization can transact
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

func (o *Organization) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

var slugFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lower-cases s, strips diacritics and collapses everything that is not a
// letter or digit into single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(slugFolder, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	lastHyphen := true
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > 100 {
		out = strings.TrimSuffix(out[:100], "-")
	}
	return out
}

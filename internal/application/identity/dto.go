package identity

import (
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// SignupInput contains input for registering an organization
type SignupInput struct {
	Name                   string `json:"name" binding:"required,min=1,max=200"`
	Slug                   string `json:"slug" binding:"max=100"`
	HomeJurisdiction       string `json:"home_jurisdiction" binding:"required,jurisdiction"`
	TaxRegistrationEnabled bool   `json:"tax_registration_enabled"`
}

// UpdateOrganizationInput contains input for updating the caller's organization.
// Version is the version the caller last read.
type UpdateOrganizationInput struct {
	Name                   *string `json:"name" binding:"omitempty,min=1,max=200"`
	HomeJurisdiction       *string `json:"home_jurisdiction" binding:"omitempty,jurisdiction"`
	TaxRegistrationEnabled *bool   `json:"tax_registration_enabled"`
	Version                int     `json:"version" binding:"required,min=1"`
}

// AddMemberInput contains input for adding a principal to the caller's organization
type AddMemberInput struct {
	PrincipalID uuid.UUID  `json:"principal_id" binding:"required"`
	Role        string     `json:"role" binding:"required,oneof=owner branch_manager staff read_only_reviewer"`
	ReportsTo   *uuid.UUID `json:"reports_to"`
}

// SetReportsToInput sets or clears the manager of a member
type SetReportsToInput struct {
	ManagerID *uuid.UUID `json:"manager_id"`
}

// OrganizationDTO represents organization data transfer object
type OrganizationDTO struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	Slug                   string    `json:"slug"`
	HomeJurisdiction       string    `json:"home_jurisdiction"`
	TaxRegistrationEnabled bool      `json:"tax_registration_enabled"`
	Status                 string    `json:"status"`
	Version                int       `json:"version"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ToOrganizationDTO converts a domain Organization to OrganizationDTO
func ToOrganizationDTO(o *identity.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:                     o.ID,
		Name:                   o.Name,
		Slug:                   o.Slug,
		HomeJurisdiction:       o.HomeJurisdiction.String(),
		TaxRegistrationEnabled: o.TaxRegistrationEnabled,
		Status:                 string(o.Status),
		Version:                o.Version,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}

// MemberDTO represents membership data transfer object
type MemberDTO struct {
	ID          uuid.UUID  `json:"id"`
	PrincipalID uuid.UUID  `json:"principal_id"`
	Role        string     `json:"role"`
	ReportsTo   *uuid.UUID `json:"reports_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToMemberDTO converts a domain Membership to MemberDTO
func ToMemberDTO(m *identity.Membership) MemberDTO {
	return MemberDTO{
		ID:          m.ID,
		PrincipalID: m.PrincipalID,
		Role:        string(m.Role),
		ReportsTo:   m.ReportsToPrincipalID,
		CreatedAt:   m.CreatedAt,
	}
}

// PrincipalDTO describes the acting principal
type PrincipalDTO struct {
	PrincipalID   uuid.UUID  `json:"principal_id"`
	OrgID         *uuid.UUID `json:"org_id"`
	Role          *string    `json:"role"`
	PlatformAdmin bool       `json:"platform_admin"`
}

// ToPrincipalDTO reports org and role as null when the principal has none
func ToPrincipalDTO(p access.Principal) PrincipalDTO {
	dto := PrincipalDTO{PrincipalID: p.ID, PlatformAdmin: p.PlatformAdmin}
	if p.HasTenant() {
		org := p.OrgID
		dto.OrgID = &org
	}
	if role := p.EffectiveRole(); role != access.RoleNone {
		r := string(role)
		dto.Role = &r
	}
	return dto
}

package identity

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultMaxReportingDepth bounds the walk up a reporting chain
const DefaultMaxReportingDepth = 16

// Membership binds a principal to its single organization with a role
type Membership struct {
	shared.BaseEntity
	TenantID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_membership_org_principal,priority:1"`
	PrincipalID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex;index:idx_membership_org_principal,priority:2"`
	Role        access.Role `gorm:"type:varchar(30);not null"`
	// ReportsToPrincipalID is the manager in the same organization, if any.
	ReportsToPrincipalID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// NewMembership creates a membership. Platform admin is not a membership role.
func NewMembership(orgID, principalID uuid.UUID, role access.Role) (*Membership, error) {
	if orgID == uuid.Nil || principalID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization and principal are required")
	}
	if !role.IsMembershipRole() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid membership role: "+string(role))
	}
	return &Membership{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    orgID,
		PrincipalID: principalID,
		Role:        role,
	}, nil
}

// ChangeRole switches the membership to another membership role
func (m *Membership) ChangeRole(role access.Role) error {
	if !role.IsMembershipRole() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid membership role: "+string(role))
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

// SetReportsTo records the manager. Callers must run ValidateReportingLine first.
func (m *Membership) SetReportsTo(manager *uuid.UUID) {
	m.ReportsToPrincipalID = manager
	m.UpdatedAt = time.Now()
}

// Principal builds the acting principal for this membership
func (m *Membership) Principal(platformAdmin bool) access.Principal {
	return access.Principal{
		ID:            m.PrincipalID,
		OrgID:         m.TenantID,
		Role:          m.Role,
		PlatformAdmin: platformAdmin,
	}
}

// ManagerLookup returns the manager of a principal, or nil at the top of the chain
type ManagerLookup func(ctx context.Context, principalID uuid.UUID) (*uuid.UUID, error)

// ValidateReportingLine rejects making manager the manager of subject when that would
// close a cycle. The chain above manager is walked at most maxDepth steps; a longer
// chain is rejected as well.
func ValidateReportingLine(ctx context.Context, subject, manager uuid.UUID, maxDepth int, managerOf ManagerLookup) error {
	if subject == manager {
		return shared.ErrHierarchyCycle
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxReportingDepth
	}

	current := manager
	for depth := 0; depth < maxDepth; depth++ {
		next, err := managerOf(ctx, current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if *next == subject {
			return shared.ErrHierarchyCycle
		}
		current = *next
	}
	return shared.NewDomainError(shared.CodeHierarchyCycle, "Reporting chain exceeds the maximum depth")
}

// PlatformAdminGrant marks a principal as platform admin, outside any organization
type PlatformAdminGrant struct {
	PrincipalID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	GrantedBy   *uuid.UUID `gorm:"type:uuid"`
	GrantedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlatformAdminGrant) TableName() string {
	return "platform_admin_grants"
}

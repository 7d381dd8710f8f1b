// Package access holds the tenant isolation predicate: who is acting, and what
// they may see or change. Everything here is pure data and pure functions so the
// same decision is applied by the persistence callbacks and by the services.
package access

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is the closed set of roles a membership can carry
type Role string

const (
	RoleOwner            Role = "owner"
	RoleBranchManager    Role = "branch_manager"
	RoleStaff            Role = "staff"
	RoleReadOnlyReviewer Role = "read_only_reviewer"
	// RolePlatformAdmin is never stored on a membership; it is granted separately.
	RolePlatformAdmin Role = "platform_admin"
	RoleNone          Role = ""
)

// MembershipRoles are the roles a membership row may hold
var MembershipRoles = []Role{RoleOwner, RoleBranchManager, RoleStaff, RoleReadOnlyReviewer}

// IsMembershipRole reports whether r can be stored on a membership
func (r Role) IsMembershipRole() bool {
	switch r {
	case RoleOwner, RoleBranchManager, RoleStaff, RoleReadOnlyReviewer:
		return true
	}
	return false
}

// CanWriteTenantRows reports whether the role may mutate rows of its own organization
func (r Role) CanWriteTenantRows() bool {
	switch r {
	case RoleOwner, RoleBranchManager, RoleStaff:
		return true
	}
	return false
}

// CanManageOrganization reports whether the role may change org settings and members
func (r Role) CanManageOrganization() bool {
	return r == RoleOwner
}

// Principal is the acting identity resolved for a request
type Principal struct {
	ID uuid.UUID
	// OrgID is uuid.Nil when the principal has no membership.
	OrgID         uuid.UUID
	Role          Role
	PlatformAdmin bool
}

// System returns the principal used by backfills and other non-interactive jobs
func System() Principal {
	return Principal{ID: uuid.Nil, PlatformAdmin: true}
}

// HasTenant reports whether the principal belongs to an organization
func (p Principal) HasTenant() bool {
	return p.OrgID != uuid.Nil
}

// IsReviewer reports whether the principal may review governance objects
func (p Principal) IsReviewer() bool {
	return p.PlatformAdmin || (p.HasTenant() && p.Role == RoleReadOnlyReviewer)
}

// EffectiveRole is the role reported to callers: membership role, else platform admin
func (p Principal) EffectiveRole() Role {
	if p.Role != RoleNone {
		return p.Role
	}
	if p.PlatformAdmin {
		return RolePlatformAdmin
	}
	return RoleNone
}

type principalKey struct{}

// WithPrincipal attaches the acting principal to ctx
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the acting principal, if any
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequirePrincipal returns the acting principal or AUTHORIZATION_DENIED when none is attached
func RequirePrincipal(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, shared.ErrAuthorizationDenied
	}
	return p, nil
}

// RequireTenant is RequirePrincipal for operations on the caller's own organization
func RequireTenant(ctx context.Context) (Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return p, err
	}
	if !p.HasTenant() {
		return p, shared.ErrNoTenant
	}
	return p, nil
}

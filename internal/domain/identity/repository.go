package identity

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/google/uuid"
)

// OrganizationRepository persists organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	// SaveWithLock updates an existing organization guarded by its version
	SaveWithLock(ctx context.Context, org *Organization) error
}

// MembershipRepository persists memberships of the caller's organization
type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	FindByPrincipal(ctx context.Context, principalID uuid.UUID) (*Membership, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Membership, error)
	Save(ctx context.Context, m *Membership) error
}

// PrincipalDirectory resolves who a principal is before any tenant scope exists.
// Implementations run outside tenant filtering and must only read.
type PrincipalDirectory interface {
	Resolve(ctx context.Context, principalID uuid.UUID) (access.Principal, error)
}

// OrganizationRegistrar creates an organization together with its owner membership
type OrganizationRegistrar interface {
	Register(ctx context.Context, org *Organization, owner *Membership) error
}

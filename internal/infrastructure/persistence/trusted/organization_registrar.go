package trusted

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tableMemberships = "memberships"

// ErrAlreadyMember is returned when a principal that belongs to an organization signs up again
var ErrAlreadyMember = shared.NewDomainError(shared.CodeAlreadyExists, "Principal already belongs to an organization")

// OrganizationRegistrar implements identity.OrganizationRegistrar
type OrganizationRegistrar struct {
	db *gorm.DB
	boundary
}

// NewOrganizationRegistrar creates a new OrganizationRegistrar
func NewOrganizationRegistrar(db *gorm.DB, log *zap.Logger, metrics *telemetry.CoreMetrics) *OrganizationRegistrar {
	return &OrganizationRegistrar{db: db, boundary: newBoundary(BoundaryRegistrar, log, metrics)}
}

// Register creates org and makes the calling principal its owner
func (r *OrganizationRegistrar) Register(ctx context.Context, org *identity.Organization, owner *identity.Membership) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if owner.PrincipalID != p.ID || owner.TenantID != org.ID || owner.Role != access.RoleOwner {
		return shared.ErrAuthorizationDenied
	}
	if p.HasTenant() {
		return ErrAlreadyMember
	}

	ectx := r.elevate(ctx,
		grant(tenant.TableOrganizations, elevation.Create),
		grant(tableMemberships, elevation.Query, elevation.Create),
	)
	err = r.db.WithContext(ectx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&identity.Membership{}).Where("principal_id = ?", p.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}
		if err := tx.Create(org).Error; err != nil {
			return translateDuplicate(err)
		}
		return translateDuplicate(tx.Create(owner).Error)
	})
	if err != nil {
		return err
	}
	r.record(ctx, p, "organization registered",
		zap.String("new_org_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)
	return nil
}

var _ identity.OrganizationRegistrar = (*OrganizationRegistrar)(nil)

package trusted

import (
	"context"
	"errors"
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrincipalDirectory implements identity.PrincipalDirectory. It runs before any
// principal is attached to the request, so it only ever reads.
type PrincipalDirectory struct {
	db *gorm.DB
	boundary
}

// NewPrincipalDirectory creates a new PrincipalDirectory
func NewPrincipalDirectory(db *gorm.DB, log *zap.Logger, metrics *telemetry.CoreMetrics) *PrincipalDirectory {
	return &PrincipalDirectory{db: db, boundary: newBoundary(BoundaryDirectory, log, metrics)}
}

// Resolve builds the principal for an authenticated subject. A subject without
// membership resolves to a principal without tenant.
func (d *PrincipalDirectory) Resolve(ctx context.Context, principalID uuid.UUID) (access.Principal, error) {
	if principalID == uuid.Nil {
		return access.Principal{}, shared.ErrAuthorizationDenied
	}
	ectx := d.elevate(ctx,
		grant(tableMemberships, elevation.Query),
		grant(tenant.TablePlatformAdminGrants, elevation.Query),
	)
	db := d.db.WithContext(ectx)

	var grants int64
	if err := db.Model(&identity.PlatformAdminGrant{}).Where("principal_id = ?", principalID).Count(&grants).Error; err != nil {
		return access.Principal{}, err
	}

	var m identity.Membership
	err := db.Where("principal_id = ?", principalID).Take(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p := access.Principal{ID: principalID, PlatformAdmin: grants > 0}
		d.audit.Debug("principal resolved without membership", zap.String("principal_id", principalID.String()))
		return p, nil
	case err != nil:
		return access.Principal{}, err
	}

	p := m.Principal(grants > 0)
	d.audit.Debug("principal resolved",
		zap.String("principal_id", p.ID.String()),
		zap.String("org_id", p.OrgID.String()),
		zap.String("role", string(p.Role)),
	)
	return p, nil
}

// PlatformAdminGrants records platform admin grants. Only the system principal or an
// existing platform admin may grant.
type PlatformAdminGrants struct {
	db *gorm.DB
	boundary
}

// NewPlatformAdminGrants creates a new PlatformAdminGrants
func NewPlatformAdminGrants(db *gorm.DB, log *zap.Logger, metrics *telemetry.CoreMetrics) *PlatformAdminGrants {
	return &PlatformAdminGrants{db: db, boundary: newBoundary(BoundaryPlatformAdmins, log, metrics)}
}

// Grant makes principalID a platform admin; granting twice is a no-op
func (g *PlatformAdminGrants) Grant(ctx context.Context, principalID uuid.UUID) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if !p.PlatformAdmin {
		return shared.ErrAuthorizationDenied
	}
	if principalID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Principal is required")
	}

	row := identity.PlatformAdminGrant{PrincipalID: principalID, GrantedAt: time.Now()}
	if p.ID != uuid.Nil {
		by := p.ID
		row.GrantedBy = &by
	}
	ectx := g.elevate(ctx, grant(tenant.TablePlatformAdminGrants, elevation.Create))
	if err := g.db.WithContext(ectx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return err
	}
	g.record(ctx, p, "platform admin granted", zap.String("grantee", principalID.String()))
	return nil
}

var _ identity.PrincipalDirectory = (*PrincipalDirectory)(nil)

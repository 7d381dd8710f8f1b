// Package trusted holds the few operations allowed to cross tenant isolation. Each
// re-validates the acting principal, elevates only the table operations it needs and
// writes an audit log line.
package trusted

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Boundary names used in audit lines and metrics
const (
	BoundaryMasterCustomer = "master_customer_registry"
	BoundaryRegistrar      = "organization_registrar"
	BoundaryDirectory      = "principal_directory"
	BoundaryGovernance     = "governance_recorder"
	BoundaryTaxCodes       = "tax_code_admin"
	BoundaryPlatformAdmins = "platform_admin_grants"
)

type boundary struct {
	name    string
	audit   *zap.Logger
	metrics *telemetry.CoreMetrics
}

func newBoundary(name string, log *zap.Logger, metrics *telemetry.CoreMetrics) boundary {
	if log == nil {
		log = zap.NewNop()
	}
	return boundary{name: name, audit: logger.Audit(log).With(zap.String("boundary", name)), metrics: metrics}
}

func principal(ctx context.Context) (access.Principal, error) {
	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		return access.Principal{}, tenant.ErrNoPrincipal
	}
	return p, nil
}

func grant(table string, ops ...elevation.Operation) []elevation.Grant {
	grants := make([]elevation.Grant, 0, len(ops))
	for _, op := range ops {
		grants = append(grants, elevation.Grant{Table: table, Op: op})
	}
	return grants
}

// elevate returns ctx carrying the grants and records the call
func (b boundary) elevate(ctx context.Context, grants ...[]elevation.Grant) context.Context {
	var all []elevation.Grant
	for _, g := range grants {
		all = append(all, g...)
	}
	b.metrics.RecordElevation(ctx, b.name)
	return elevation.With(ctx, elevation.Elevation{Reason: b.name, Grants: all})
}

// record writes the audit line for a completed call
func (b boundary) record(ctx context.Context, p access.Principal, msg string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("principal_id", p.ID.String()),
		zap.String("org_id", p.OrgID.String()),
		zap.String("role", string(p.EffectiveRole())),
	}
	if id := logger.GetRequestID(ctx); id != "" {
		base = append(base, zap.String("request_id", id))
	}
	b.audit.Info(msg, append(base, fields...)...)
}

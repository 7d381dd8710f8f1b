package trusted

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaxCodeAdmin implements catalog.TaxCodeAdmin for platform admins
type TaxCodeAdmin struct {
	db *gorm.DB
	boundary
}

// NewTaxCodeAdmin creates a new TaxCodeAdmin
func NewTaxCodeAdmin(db *gorm.DB, log *zap.Logger, metrics *telemetry.CoreMetrics) *TaxCodeAdmin {
	return &TaxCodeAdmin{db: db, boundary: newBoundary(BoundaryTaxCodes, log, metrics)}
}

// Save inserts or replaces a tax code
func (a *TaxCodeAdmin) Save(ctx context.Context, code *catalog.TaxCode) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := access.Authorize(p, access.ActionWrite, access.Resource{Kind: access.KindTaxCode}).Err(); err != nil {
		return err
	}

	ectx := a.elevate(ctx, grant(tenant.TableTaxCodes, elevation.Create, elevation.Update))
	if err := a.db.WithContext(ectx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "description", "active", "updated_at"}),
	}).Create(code).Error; err != nil {
		return err
	}
	a.record(ctx, p, "tax code saved",
		zap.String("code", code.Code),
		zap.String("rate", code.Rate.String()),
		zap.Bool("active", code.Active),
	)
	return nil
}

var _ catalog.TaxCodeAdmin = (*TaxCodeAdmin)(nil)

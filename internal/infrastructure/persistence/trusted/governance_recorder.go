package trusted

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GovernanceRecorder implements catalog.GovernanceRecorder
type GovernanceRecorder struct {
	db *gorm.DB
	boundary
}

// NewGovernanceRecorder creates a new GovernanceRecorder
func NewGovernanceRecorder(db *gorm.DB, log *zap.Logger, metrics *telemetry.CoreMetrics) *GovernanceRecorder {
	return &GovernanceRecorder{db: db, boundary: newBoundary(BoundaryGovernance, log, metrics)}
}

// RecordTransition locks the row, checks it still has expectedVersion and
// expectedStatus, writes p and appends record, all in one transaction.
func (g *GovernanceRecorder) RecordTransition(ctx context.Context, p *catalog.MasterProduct, expectedVersion int, expectedStatus catalog.ApprovalStatus, record *catalog.ReviewAuditRecord) error {
	actor, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := authorizeTransition(actor, p, record.Action); err != nil {
		return err
	}

	ectx := g.elevate(ctx,
		grant(tenant.TableMasterProducts, elevation.Query, elevation.Update),
		grant(tenant.TableReviewAuditRecords, elevation.Create),
	)
	err = g.db.WithContext(ectx).Transaction(func(tx *gorm.DB) error {
		var current catalog.MasterProduct
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "version", "approval_status").
			Where("id = ?", p.ID).
			Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if current.Version != expectedVersion || current.ApprovalStatus != expectedStatus {
			return shared.ErrStaleState
		}

		result := tx.Model(&catalog.MasterProduct{}).
			Where("id = ? AND version = ? AND approval_status = ?", p.ID, expectedVersion, expectedStatus).
			Updates(map[string]any{
				"name":            p.Name,
				"sku":             p.SKU,
				"barcode":         p.Barcode,
				"base_price":      p.BasePrice,
				"tax_code":        p.TaxCode,
				"tax_rate":        p.TaxRate,
				"approval_status": p.ApprovalStatus,
				"submitted_by":    p.SubmittedBy,
				"reviewed_by":     p.ReviewedBy,
				"reviewed_at":     p.ReviewedAt,
				"rejection_note":  p.RejectionNote,
				"version":         p.Version,
				"updated_at":      p.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrStaleState
		}
		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, shared.ErrStaleState) {
			g.metrics.RecordStaleReview(ctx)
		}
		return err
	}

	g.metrics.RecordTransition(ctx, string(record.Action), string(record.FromStatus), string(record.ToStatus))
	g.record(ctx, actor, "governance transition",
		zap.String("master_product_id", p.ID.String()),
		zap.String("action", string(record.Action)),
		zap.String("from", string(record.FromStatus)),
		zap.String("to", string(record.ToStatus)),
	)
	return nil
}

// authorizeTransition re-checks the caller's intent: reviewer verdicts need the
// review capability, resubmission needs write access as the submitting organization.
func authorizeTransition(actor access.Principal, p *catalog.MasterProduct, action catalog.ReviewAction) error {
	resource := access.Resource{Kind: access.KindMasterProduct, OrgID: p.SubmittingOrg()}
	switch action {
	case catalog.ActionApprove, catalog.ActionReject, catalog.ActionAutoPass:
		return access.Authorize(actor, access.ActionReview, resource).Err()
	case catalog.ActionResubmit:
		return access.Authorize(actor, access.ActionWrite, resource).Err()
	}
	return shared.ErrInvalidTransition
}

var _ catalog.GovernanceRecorder = (*GovernanceRecorder)(nil)

package trusted

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MasterCustomerRegistry implements partner.MasterCustomerRegistry. Convergence of
// concurrent callers rests on the unique indexes over mobile and tax registration.
type MasterCustomerRegistry struct {
	db *gorm.DB
	boundary
}

// NewMasterCustomerRegistry creates a new MasterCustomerRegistry
func NewMasterCustomerRegistry(db *gorm.DB, log *zap.Logger, metrics *telemetry.CoreMetrics) *MasterCustomerRegistry {
	return &MasterCustomerRegistry{db: db, boundary: newBoundary(BoundaryMasterCustomer, log, metrics)}
}

// Upsert returns the master customer for key, creating it when no match exists.
// The second result is true only for the call that inserted the row. The legal name
// of an existing customer is never changed.
func (r *MasterCustomerRegistry) Upsert(ctx context.Context, key partner.NaturalKey, legalName, stateCode string) (uuid.UUID, bool, error) {
	p, err := principal(ctx)
	if err != nil {
		return uuid.Nil, false, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.Resource{Kind: access.KindMasterCustomer}).Err(); err != nil {
		return uuid.Nil, false, err
	}
	if key.Mobile == "" && key.TaxRegistrationNo == "" {
		return uuid.Nil, false, shared.ErrIdentifierRequired
	}
	candidate, err := partner.NewMasterCustomer(key, legalName, stateCode)
	if err != nil {
		return uuid.Nil, false, err
	}

	ectx := r.elevate(ctx, grant(tenant.TableMasterCustomers, elevation.Query, elevation.Create))
	db := r.db.WithContext(ectx)

	if id, found, err := lookupMasterCustomer(db, key); err != nil || found {
		if found {
			r.metrics.RecordDedup(ctx, telemetry.DedupMatched)
			r.record(ctx, p, "master customer matched", zap.String("master_customer_id", id.String()))
		}
		return id, false, err
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(candidate)
	if result.Error == nil && result.RowsAffected == 1 {
		r.metrics.RecordDedup(ctx, telemetry.DedupCreated)
		r.record(ctx, p, "master customer created", zap.String("master_customer_id", candidate.ID.String()))
		return candidate.ID, true, nil
	}
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return uuid.Nil, false, result.Error
	}

	// Another caller inserted the same key between the lookup and the insert.
	id, found, err := lookupMasterCustomer(db, key)
	if err != nil {
		return uuid.Nil, false, err
	}
	if !found {
		r.metrics.RecordDedup(ctx, telemetry.DedupRaceFailed)
		r.audit.Warn("master customer race unresolved", zap.String("principal_id", p.ID.String()))
		return uuid.Nil, false, shared.ErrDuplicateRace
	}
	r.metrics.RecordDedup(ctx, telemetry.DedupRaceWon)
	r.record(ctx, p, "master customer matched after race", zap.String("master_customer_id", id.String()))
	return id, false, nil
}

// lookupMasterCustomer matches by tax registration first, then by mobile
func lookupMasterCustomer(db *gorm.DB, key partner.NaturalKey) (uuid.UUID, bool, error) {
	if key.TaxRegistrationNo != "" {
		if id, found, err := findMasterCustomer(db, "tax_registration_no = ?", key.TaxRegistrationNo); err != nil || found {
			return id, found, err
		}
	}
	if key.Mobile != "" {
		return findMasterCustomer(db, "mobile = ?", key.Mobile)
	}
	return uuid.Nil, false, nil
}

func findMasterCustomer(db *gorm.DB, where string, value string) (uuid.UUID, bool, error) {
	var c partner.MasterCustomer
	err := db.Select("id").Where(where, value).Take(&c).Error
	switch {
	case err == nil:
		return c.ID, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return uuid.Nil, false, nil
	default:
		return uuid.Nil, false, err
	}
}

var _ partner.MasterCustomerRegistry = (*MasterCustomerRegistry)(nil)

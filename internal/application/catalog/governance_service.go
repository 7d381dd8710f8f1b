package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBackfillBatchSize is used when the backfill is started without a batch size
const DefaultBackfillBatchSize = 200

const legacyBackfillNote = "legacy import backfill"

// GovernanceService runs the shared catalog approval workflow
type GovernanceService struct {
	masters   catalog.MasterProductRepository
	taxCodes  catalog.TaxCodeRepository
	audits    catalog.ReviewAuditRepository
	recorder  catalog.GovernanceRecorder
	publisher shared.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewGovernanceService creates a new GovernanceService
func NewGovernanceService(
	masters catalog.MasterProductRepository,
	taxCodes catalog.TaxCodeRepository,
	audits catalog.ReviewAuditRepository,
	recorder catalog.GovernanceRecorder,
	log *zap.Logger,
) *GovernanceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GovernanceService{
		masters:  masters,
		taxCodes: taxCodes,
		audits:   audits,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

// SetEventPublisher sets the publisher for governance events
func (s *GovernanceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Submit proposes a new catalog entry on behalf of the caller's organization
func (s *GovernanceService) Submit(ctx context.Context, req SubmitMasterProductRequest) (*MasterProductResponse, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err(); err != nil {
		return nil, err
	}
	master, err := catalog.NewMasterProductSubmission(p.OrgID, p.ID, req.Fields())
	if err != nil {
		return nil, err
	}
	if err := s.masters.Create(ctx, master); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, s.log, master)

	resp := ToMasterProductResponse(master, p)
	return &resp, nil
}

// GetByID returns a catalog entry visible to the caller
func (s *GovernanceService) GetByID(ctx context.Context, id uuid.UUID) (*MasterProductResponse, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	master, err := s.masters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMasterProductResponse(master, p)
	return &resp, nil
}

// List returns the catalog entries visible to the caller
func (s *GovernanceService) List(ctx context.Context, filter MasterProductListFilter) (shared.Paginated[MasterProductResponse], error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return shared.Paginated[MasterProductResponse]{}, err
	}
	f := catalog.MasterProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status:  catalog.ApprovalStatus(filter.Status),
		Barcode: filter.Barcode,
		SKU:     filter.SKU,
	}
	masters, total, err := s.masters.List(ctx, f)
	if err != nil {
		return shared.Paginated[MasterProductResponse]{}, err
	}
	items := make([]MasterProductResponse, len(masters))
	for i := range masters {
		items[i] = ToMasterProductResponse(&masters[i], p)
	}
	return shared.NewPaginated(items, total, max(filter.Page, 1), f.Limit()), nil
}

// ListPending returns the entries awaiting review. Reviewers see every submission,
// members see their own organization's.
func (s *GovernanceService) ListPending(ctx context.Context, filter MasterProductListFilter) (shared.Paginated[MasterProductResponse], error) {
	filter.Status = string(catalog.ApprovalPending)
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "asc"
	}
	return s.List(ctx, filter)
}

// GetTaxRate resolves the effective rate: the active tax code's rate, else the stored rate
func (s *GovernanceService) GetTaxRate(ctx context.Context, id uuid.UUID) (*TaxRateResponse, error) {
	master, err := s.masters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	code, err := s.lookupTaxCode(ctx, master.TaxCode)
	if err != nil {
		return nil, err
	}
	rate, ok := master.EffectiveTaxRate(code)
	if !ok {
		return nil, shared.ErrMissingTaxCode
	}
	source := RateSourceStored
	if code != nil && code.Active {
		source = RateSourceTaxCode
	}
	return &TaxRateResponse{MasterProductID: master.ID, Rate: rate, TaxCode: master.TaxCode, Source: source}, nil
}

// lookupTaxCode returns nil for a missing reference or an unknown code
func (s *GovernanceService) lookupTaxCode(ctx context.Context, ref *string) (*catalog.TaxCode, error) {
	if ref == nil || *ref == "" {
		return nil, nil
	}
	code, err := s.taxCodes.FindByCode(ctx, *ref)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return code, err
}

// Review applies a reviewer decision. Approval needs an active tax code; the state
// change and its audit record are stored in one transaction and a concurrent review
// of the same entry fails with STALE_STATE.
func (s *GovernanceService) Review(ctx context.Context, id uuid.UUID, req ReviewRequest) (*MasterProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "GovernanceService", "Review")
	defer span.End()

	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsReviewer() {
		return nil, shared.ErrAuthorizationDenied
	}
	action, err := catalog.Decision(req.Decision).Action()
	if err != nil {
		return nil, err
	}

	master, err := s.masters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionReview, master.AccessResource()).Err(); err != nil {
		return nil, err
	}
	if action == catalog.ActionApprove {
		code, err := s.lookupTaxCode(ctx, master.TaxCode)
		if err != nil {
			return nil, err
		}
		if code == nil || !code.Active {
			return nil, shared.ErrMissingTaxCode
		}
	}

	if err := s.transition(ctx, master, p, func(now time.Time) (catalog.Transition, error) {
		return master.Apply(action, p.ID, req.Note, now)
	}, req.Note); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToMasterProductResponse(master, p)
	return &resp, nil
}

// Resubmit lets the submitting organization amend a rejected entry and send it back for review
func (s *GovernanceService) Resubmit(ctx context.Context, id uuid.UUID, req SubmitMasterProductRequest) (*MasterProductResponse, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	master, err := s.masters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, master.AccessResource()).Err(); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, master, p, func(now time.Time) (catalog.Transition, error) {
		return master.Resubmit(p.ID, req.Fields(), now)
	}, ""); err != nil {
		return nil, err
	}

	resp := ToMasterProductResponse(master, p)
	return &resp, nil
}

// transition applies change to master and persists it guarded by the loaded version and status
func (s *GovernanceService) transition(
	ctx context.Context,
	master *catalog.MasterProduct,
	p access.Principal,
	change func(now time.Time) (catalog.Transition, error),
	note string,
) error {
	expectedVersion := master.Version
	expectedStatus := master.ApprovalStatus
	now := s.now()

	t, err := change(now)
	if err != nil {
		return err
	}
	var actorOrg *uuid.UUID
	if p.HasTenant() {
		org := p.OrgID
		actorOrg = &org
	}
	record := catalog.NewReviewAuditRecord(master.ID, p.ID, actorOrg, t, note, now)
	if err := s.recorder.RecordTransition(ctx, master, expectedVersion, expectedStatus, record); err != nil {
		return err
	}
	publishEvents(ctx, s.publisher, s.log, master)
	return nil
}

// AuditTrail returns the transitions of an entry visible to the caller, oldest first
func (s *GovernanceService) AuditTrail(ctx context.Context, id uuid.UUID) ([]ReviewAuditResponse, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	master, err := s.masters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.audits.ListByMasterProduct(ctx, master.ID)
	if err != nil {
		return nil, err
	}
	showNote := access.CanSeeRejectionNote(p, master.SubmittingOrg())
	out := make([]ReviewAuditResponse, len(records))
	for i := range records {
		out[i] = ToReviewAuditResponse(&records[i], showNote)
	}
	return out, nil
}

// AutoPassLegacy walks imported entries still pending. Entries referencing an active
// tax code are auto-passed; entries without one stay pending for manual review.
// It runs as the system principal.
func (s *GovernanceService) AutoPassLegacy(ctx context.Context, batchSize int) (*BackfillResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBackfillBatchSize
	}
	system := access.System()
	ctx = access.WithPrincipal(ctx, system)
	log := logger.WithLogger(ctx, s.log)

	result := &BackfillResult{}
	cursor := uuid.Nil
	for {
		batch, err := s.masters.ListLegacyPending(ctx, cursor, batchSize)
		if err != nil {
			return result, err
		}
		for i := range batch {
			master := &batch[i]
			cursor = master.ID
			result.Scanned++

			code, err := s.lookupTaxCode(ctx, master.TaxCode)
			if err != nil {
				return result, err
			}
			if code == nil || !code.Active {
				result.LeftPending++
				continue
			}
			err = s.transition(ctx, master, system, func(now time.Time) (catalog.Transition, error) {
				return master.Apply(catalog.ActionAutoPass, system.ID, legacyBackfillNote, now)
			}, legacyBackfillNote)
			if errors.Is(err, shared.ErrStaleState) {
				// reviewed concurrently; the reviewer's decision stands
				result.LeftPending++
				continue
			}
			if err != nil {
				return result, err
			}
			result.AutoPassed++
		}
		if len(batch) < batchSize {
			break
		}
	}

	log.Info("legacy governance backfill finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("auto_passed", result.AutoPassed),
		zap.Int("left_pending", result.LeftPending))
	return result, nil
}

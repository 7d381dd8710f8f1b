package trade

import (
	"context"
	"errors"
	"time"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InvoiceService validates invoice lines and runs the invoice lifecycle
type InvoiceService struct {
	repos     *NoOpTransactionScope
	txScope   TransactionScope
	taxCodes  catalog.TaxCodeRepository
	orgs      identity.OrganizationRepository
	links     partner.CustomerLinkRepository
	customers partner.MasterCustomerRepository
	publisher shared.EventPublisher
	metrics   *telemetry.CoreMetrics
	log       *zap.Logger
	now       func() time.Time
}

// InvoiceServiceDeps groups the collaborators of InvoiceService
type InvoiceServiceDeps struct {
	Invoices       trade.InvoiceRepository
	OrgProducts    catalog.OrgProductRepository
	MasterProducts catalog.MasterProductRepository
	StockLedger    inventory.StockLedgerRepository
	SerialUnits    inventory.SerialUnitRepository
	TaxCodes       catalog.TaxCodeRepository
	Organizations  identity.OrganizationRepository
	CustomerLinks  partner.CustomerLinkRepository
	Customers      partner.MasterCustomerRepository
	TxScope        TransactionScope
	Logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(deps InvoiceServiceDeps) *InvoiceService {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	repos := NewNoOpTransactionScope(deps.Invoices, deps.OrgProducts, deps.MasterProducts, deps.StockLedger, deps.SerialUnits)
	txScope := deps.TxScope
	if txScope == nil {
		txScope = repos
	}
	return &InvoiceService{
		repos:     repos,
		txScope:   txScope,
		taxCodes:  deps.TaxCodes,
		orgs:      deps.Organizations,
		links:     deps.CustomerLinks,
		customers: deps.Customers,
		log:       log,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetMetrics enables validation and finalization counters
func (s *InvoiceService) SetMetrics(metrics *telemetry.CoreMetrics) {
	s.metrics = metrics
}

// validationFailed aborts the finalize transaction when the commit-time re-check finds issues
type validationFailed struct {
	result trade.ValidationResult
}

func (e *validationFailed) Error() string {
	return "invoice validation failed"
}

// ValidateInvoiceItems checks lines against the caller's products, stock, serials and
// governance state. Line problems come back as data; an error means the request itself
// could not be evaluated.
func (s *InvoiceService) ValidateInvoiceItems(ctx context.Context, req ValidateItemsRequest) (*trade.ValidationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "ValidateInvoiceItems",
		attribute.Int("items", len(req.Items)),
		attribute.Bool("allow_draft", req.AllowDraft),
	)
	defer span.End()

	if _, err := reader(ctx); err != nil {
		return nil, err
	}
	items := toItemInputs(req.Items)
	if err := trade.CheckShape(items); err != nil {
		return nil, err
	}
	result, err := s.evaluate(ctx, s.repos, items, req.AllowDraft)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &result, nil
}

func (s *InvoiceService) evaluate(ctx context.Context, repos TransactionalRepositories, items []trade.ItemInput, allowDraft bool) (trade.ValidationResult, error) {
	started := s.now()
	snap, err := s.loadSnapshot(ctx, repos, items, allowDraft)
	if err != nil {
		return trade.ValidationResult{}, err
	}
	result := trade.EvaluateLines(items, snap, allowDraft)

	s.metrics.RecordValidationDuration(ctx, s.now().Sub(started))
	for _, issue := range result.Errors {
		s.metrics.RecordValidationIssue(ctx, string(issue.Code), "error")
	}
	for _, issue := range result.Warnings {
		s.metrics.RecordValidationIssue(ctx, string(issue.Code), "warning")
	}
	return result, nil
}

// CreateDraft stores a new draft. Only the shape of the lines is checked.
func (s *InvoiceService) CreateDraft(ctx context.Context, req SaveDraftRequest) (*InvoiceResponse, error) {
	p, err := writer(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, req.CustomerLinkID); err != nil {
		return nil, err
	}

	inv := trade.NewDraftInvoice(p.OrgID, p.ID, req.CustomerLinkID)
	inv.Notes = req.Notes
	if err := inv.ReplaceLines(toItemInputs(req.Items)); err != nil {
		return nil, err
	}
	if err := s.repos.Invoices().Create(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// SaveDraft is the autosave of an existing draft
func (s *InvoiceService) SaveDraft(ctx context.Context, id uuid.UUID, req SaveDraftRequest) (*InvoiceResponse, error) {
	if _, err := writer(ctx); err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, req.CustomerLinkID); err != nil {
		return nil, err
	}

	var saved *trade.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Version != req.Version {
			return shared.ErrStaleState
		}
		if err := inv.SetCustomer(req.CustomerLinkID); err != nil {
			return err
		}
		if err := inv.ReplaceLines(toItemInputs(req.Items)); err != nil {
			return err
		}
		inv.Notes = req.Notes
		if err := repos.Invoices().SaveDraft(ctx, inv, req.Version); err != nil {
			return err
		}
		saved = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(saved)
	return &resp, nil
}

// Finalize validates the draft strictly, then commits it: the products are locked,
// stock and serials are checked again, a number is allocated, taxes are computed,
// serial units are marked sold and outbound ledger entries are appended, all in one
// transaction. Validation issues are returned as data with a nil invoice.
func (s *InvoiceService) Finalize(ctx context.Context, id uuid.UUID) (*FinalizeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "Finalize",
		attribute.String("invoice_id", id.String()))
	defer span.End()

	p, err := writer(ctx)
	if err != nil {
		return nil, err
	}
	draft, err := s.repos.Invoices().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !draft.IsDraft() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Only draft invoices can be finalized")
	}
	items := draft.Items()
	if err := trade.CheckShape(items); err != nil {
		return nil, err
	}

	// cheap pass outside the transaction so obvious problems do not take locks
	result, err := s.evaluate(ctx, s.repos, items, false)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return &FinalizeResponse{Validation: result}, nil
	}

	mode, place, err := s.taxModeFor(ctx, p.OrgID, draft.CustomerLinkID)
	if err != nil {
		return nil, err
	}

	var finalized *trade.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrgProducts().LockByIDs(ctx, trade.ProductIDs(items)); err != nil {
			return err
		}
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !inv.IsDraft() || inv.Version != draft.Version {
			return shared.ErrStaleState
		}

		snap, err := s.loadSnapshot(ctx, repos, items, false)
		if err != nil {
			return err
		}
		if recheck := trade.EvaluateLines(items, snap, false); !recheck.Valid() {
			return &validationFailed{result: recheck}
		}

		now := s.now()
		number, err := repos.Invoices().NextNumber(ctx, now)
		if err != nil {
			return err
		}
		expected := inv.Version
		if err := inv.Finalize(trade.FinalizeInput{
			Number:        number,
			Mode:          mode,
			PlaceOfSupply: place,
			Rates:         lineRates(snap),
			ActorID:       p.ID,
			Now:           now,
		}); err != nil {
			return err
		}
		if err := repos.Invoices().SaveState(ctx, inv, expected, trade.InvoiceDraft); err != nil {
			return err
		}
		if err := s.issueStock(ctx, repos, inv, snap, p); err != nil {
			return err
		}
		finalized = inv
		return nil
	})

	var failed *validationFailed
	if errors.As(err, &failed) {
		return &FinalizeResponse{Validation: failed.result}, nil
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordInvoiceFinalized(ctx, string(finalized.TaxMode))
	s.publish(ctx, finalized)
	logger.WithLogger(ctx, s.log).Info("invoice finalized",
		zap.String("invoice_id", finalized.ID.String()),
		zap.String("number", *finalized.Number),
		zap.String("tax_mode", string(finalized.TaxMode)),
	)
	resp := ToInvoiceResponse(finalized)
	return &FinalizeResponse{Invoice: &resp, Validation: result}, nil
}

// issueStock marks serial units sold and appends one outbound entry per line. A unit
// sold concurrently since the re-check makes the guarded update short and aborts.
func (s *InvoiceService) issueStock(ctx context.Context, repos TransactionalRepositories, inv *trade.Invoice, snap trade.ValidationSnapshot, p access.Principal) error {
	createdBy := p.ID
	entries := make([]*inventory.StockLedgerEntry, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		if product := snap.Products[line.OrgProductID]; product != nil && product.IsSerialTracked() && len(line.Serials) > 0 {
			sold, err := repos.SerialUnits().MarkSold(ctx, line.OrgProductID, line.Serials, inv.ID)
			if err != nil {
				return err
			}
			if sold != int64(len(line.Serials)) {
				return shared.ErrInvalidSerial
			}
		}
		entry, err := inventory.NewStockOut(inventory.Movement{
			TenantID:     inv.TenantID,
			OrgProductID: line.OrgProductID,
			Quantity:     line.Quantity,
			SourceType:   inventory.SourceInvoice,
			SourceID:     &inv.ID,
			Note:         *inv.Number,
			CreatedBy:    &createdBy,
		})
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	return repos.StockLedger().Append(ctx, entries...)
}

// Cancel discards a draft, or reverses a finalized invoice: inbound entries restore
// the stock and its serial units become available again.
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	p, err := writer(ctx)
	if err != nil {
		return nil, err
	}

	var cancelled *trade.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		expectedVersion, expectedStatus := inv.Version, inv.Status
		reverse, err := inv.Cancel(req.Reason, s.now())
		if err != nil {
			return err
		}
		if err := repos.Invoices().SaveState(ctx, inv, expectedVersion, expectedStatus); err != nil {
			return err
		}
		if reverse {
			if err := s.reverseStock(ctx, repos, inv, p); err != nil {
				return err
			}
		}
		cancelled = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cancelled)
	resp := ToInvoiceResponse(cancelled)
	return &resp, nil
}

func (s *InvoiceService) reverseStock(ctx context.Context, repos TransactionalRepositories, inv *trade.Invoice, p access.Principal) error {
	createdBy := p.ID
	note := "cancel"
	if inv.Number != nil {
		note = "cancel " + *inv.Number
	}
	hasSerials := false
	entries := make([]*inventory.StockLedgerEntry, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		hasSerials = hasSerials || len(line.Serials) > 0
		entry, err := inventory.NewStockIn(inventory.Movement{
			TenantID:     inv.TenantID,
			OrgProductID: line.OrgProductID,
			Quantity:     line.Quantity,
			SourceType:   inventory.SourceInvoiceCancel,
			SourceID:     &inv.ID,
			Note:         note,
			CreatedBy:    &createdBy,
		})
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	if hasSerials {
		if err := repos.SerialUnits().ReleaseByInvoice(ctx, inv.ID); err != nil {
			return err
		}
	}
	return repos.StockLedger().Append(ctx, entries...)
}

// GetByID returns an invoice of the caller's organization
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	if _, err := reader(ctx); err != nil {
		return nil, err
	}
	inv, err := s.repos.Invoices().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List returns a page of the caller's invoices
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) (shared.Paginated[InvoiceResponse], error) {
	if _, err := reader(ctx); err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	f := trade.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: trade.InvoiceStatus(filter.Status),
	}
	invoices, total, err := s.repos.Invoices().List(ctx, f)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceResponse(&invoices[i])
	}
	return shared.NewPaginated(items, total, max(filter.Page, 1), f.Limit()), nil
}

// taxModeFor compares the organization's home jurisdiction with the customer's
func (s *InvoiceService) taxModeFor(ctx context.Context, orgID uuid.UUID, customerLinkID *uuid.UUID) (trade.TaxMode, valueobject.Jurisdiction, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return "", "", err
	}
	var customer valueobject.Jurisdiction
	known := false
	if customerLinkID != nil {
		link, err := s.links.FindByID(ctx, *customerLinkID)
		if err != nil {
			return "", "", err
		}
		master, err := s.customers.FindByID(ctx, link.MasterCustomerID)
		if err != nil {
			return "", "", err
		}
		customer, known = master.Jurisdiction()
	}
	mode := trade.DetermineTaxMode(org.HomeJurisdiction, customer, known)
	place := org.HomeJurisdiction
	if known {
		place = customer
	}
	return mode, place, nil
}

func (s *InvoiceService) checkCustomer(ctx context.Context, customerLinkID *uuid.UUID) error {
	if customerLinkID == nil {
		return nil
	}
	_, err := s.links.FindByID(ctx, *customerLinkID)
	return err
}

func (s *InvoiceService) publish(ctx context.Context, inv *trade.Invoice) {
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.log).Warn("failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	}
}

func reader(ctx context.Context) (access.Principal, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return p, err
	}
	return p, access.Authorize(p, access.ActionRead, access.TenantRow(p.OrgID)).Err()
}

func writer(ctx context.Context) (access.Principal, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return p, err
	}
	return p, access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err()
}

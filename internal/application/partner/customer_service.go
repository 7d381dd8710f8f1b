package partner

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService deduplicates customers across organizations and manages the
// caller's links to them
type CustomerService struct {
	registry partner.MasterCustomerRegistry
	masters  partner.MasterCustomerRepository
	links    partner.CustomerLinkRepository
	log      *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	registry partner.MasterCustomerRegistry,
	masters partner.MasterCustomerRepository,
	links partner.CustomerLinkRepository,
	log *zap.Logger,
) *CustomerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerService{registry: registry, masters: masters, links: links, log: log}
}

// UpsertMasterCustomer finds or creates the master customer for the natural key and
// makes sure the caller's organization is linked to it. Repeating the call is harmless
// and an existing legal name is never overwritten.
func (s *CustomerService) UpsertMasterCustomer(ctx context.Context, req UpsertCustomerRequest) (*UpsertCustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CustomerService", "UpsertMasterCustomer")
	defer span.End()

	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err(); err != nil {
		return nil, err
	}
	key, err := partner.NormalizeNaturalKey(req.Mobile, req.TaxRegistrationNo)
	if err != nil {
		return nil, err
	}

	masterID, created, err := s.registry.Upsert(ctx, key, req.LegalName, req.StateCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	link, err := partner.NewCustomerLink(p.OrgID, masterID, p.ID, req.Alias)
	if err != nil {
		return nil, err
	}
	link, err = s.links.EnsureLink(ctx, link)
	if err != nil {
		return nil, err
	}
	master, err := s.masters.FindByID(ctx, masterID)
	if err != nil {
		return nil, err
	}

	return &UpsertCustomerResponse{
		LinkedCustomerResponse: ToLinkedCustomerResponse(link, master),
		Created:                created,
	}, nil
}

// GetLinked returns one linked customer of the caller's organization
func (s *CustomerService) GetLinked(ctx context.Context, linkID uuid.UUID) (*LinkedCustomerResponse, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	master, err := s.masters.FindByID(ctx, link.MasterCustomerID)
	if err != nil {
		return nil, err
	}
	resp := ToLinkedCustomerResponse(link, master)
	return &resp, nil
}

// ListLinked returns a page of the customers linked to the caller's organization
func (s *CustomerService) ListLinked(ctx context.Context, filter CustomerListFilter) (shared.Paginated[LinkedCustomerResponse], error) {
	if _, err := access.RequireTenant(ctx); err != nil {
		return shared.Paginated[LinkedCustomerResponse]{}, err
	}
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}
	linked, total, err := s.links.List(ctx, f)
	if err != nil {
		return shared.Paginated[LinkedCustomerResponse]{}, err
	}
	items := make([]LinkedCustomerResponse, len(linked))
	for i := range linked {
		items[i] = ToLinkedCustomerResponse(&linked[i].Link, &linked[i].Master)
	}
	return shared.NewPaginated(items, total, max(filter.Page, 1), f.Limit()), nil
}

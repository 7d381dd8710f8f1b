package catalog

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrgProductService manages an organization's products and their link to the shared catalog
type OrgProductService struct {
	products  catalog.OrgProductRepository
	masters   catalog.MasterProductRepository
	txScope   TransactionScope
	publisher shared.EventPublisher
	log       *zap.Logger
}

// NewOrgProductService creates a new OrgProductService
func NewOrgProductService(
	products catalog.OrgProductRepository,
	masters catalog.MasterProductRepository,
	txScope TransactionScope,
	log *zap.Logger,
) *OrgProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrgProductService{
		products: products,
		masters:  masters,
		txScope:  txScope,
		log:      log,
	}
}

// SetEventPublisher sets the publisher used for catalog submission events
func (s *OrgProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create creates an org product. Without an explicit catalog entry the product is
// auto-linked in the same transaction.
func (s *OrgProductService) Create(ctx context.Context, req CreateOrgProductRequest) (*OrgProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrgProductService", "Create")
	defer span.End()

	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err(); err != nil {
		return nil, err
	}

	product, err := catalog.NewOrgProduct(p.OrgID, p.ID, req.Name, req.SKU, catalog.TrackingMode(req.TrackingMode))
	if err != nil {
		return nil, err
	}
	exists, err := s.products.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
	}
	if req.Barcode != "" {
		if err := product.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}
	cost, selling := decimal.Zero, decimal.Zero
	if req.CostPrice != nil {
		cost = *req.CostPrice
	}
	if req.SellingPrice != nil {
		selling = *req.SellingPrice
	}
	if err := product.SetPrices(cost, selling); err != nil {
		return nil, err
	}

	var submitted *catalog.MasterProduct
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.MasterProductID != nil {
			master, err := repos.MasterProducts().FindByID(ctx, *req.MasterProductID)
			if err != nil {
				return err
			}
			if err := product.LinkMaster(master.ID); err != nil {
				return err
			}
			return repos.OrgProducts().Create(ctx, product)
		}
		if err := repos.OrgProducts().Create(ctx, product); err != nil {
			return err
		}
		_, master, err := linkToCatalog(ctx, repos, product, p)
		submitted = master
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if submitted != nil {
		publishEvents(ctx, s.publisher, s.log, submitted)
	}

	resp := ToOrgProductResponse(product)
	return &resp, nil
}

// AutoLink links an unlinked org product to the catalog, submitting a new pending
// entry when no published entry shares its barcode. Linked products return their
// existing entry.
func (s *OrgProductService) AutoLink(ctx context.Context, id uuid.UUID) (*AutoLinkResponse, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err(); err != nil {
		return nil, err
	}

	var (
		resp      *AutoLinkResponse
		submitted *catalog.MasterProduct
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrgProducts().LockByIDs(ctx, []uuid.UUID{id}); err != nil {
			return err
		}
		product, err := repos.OrgProducts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp, submitted, err = linkToCatalog(ctx, repos, product, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	if submitted != nil {
		publishEvents(ctx, s.publisher, s.log, submitted)
		logger.WithLogger(ctx, s.log).Info("org product submitted to catalog",
			zap.String("org_product_id", id.String()),
			zap.String("master_product_id", submitted.ID.String()))
	}
	return resp, nil
}

// linkToCatalog runs inside a transaction holding the org product row. The returned
// master product is non-nil only when a new submission was created.
func linkToCatalog(ctx context.Context, repos TransactionalRepositories, product *catalog.OrgProduct, p access.Principal) (*AutoLinkResponse, *catalog.MasterProduct, error) {
	if product.IsLinked() {
		return &AutoLinkResponse{OrgProductID: product.ID, MasterProductID: *product.MasterProductID}, nil, nil
	}

	if product.Barcode != "" {
		existing, err := repos.MasterProducts().FindPublishedByBarcode(ctx, product.Barcode)
		switch {
		case err == nil:
			if err := product.LinkMaster(existing.ID); err != nil {
				return nil, nil, err
			}
			if err := repos.OrgProducts().SaveWithLock(ctx, product); err != nil {
				return nil, nil, err
			}
			return &AutoLinkResponse{OrgProductID: product.ID, MasterProductID: existing.ID}, nil, nil
		case !errors.Is(err, shared.ErrNotFound):
			return nil, nil, err
		}
	}

	master, err := catalog.NewMasterProductSubmission(p.OrgID, p.ID, product.SubmissionFields())
	if err != nil {
		return nil, nil, err
	}
	if err := repos.MasterProducts().Create(ctx, master); err != nil {
		return nil, nil, err
	}
	if err := product.LinkMaster(master.ID); err != nil {
		return nil, nil, err
	}
	if err := repos.OrgProducts().SaveWithLock(ctx, product); err != nil {
		return nil, nil, err
	}
	return &AutoLinkResponse{OrgProductID: product.ID, MasterProductID: master.ID, Created: true}, master, nil
}

// Link points an org product at an existing catalog entry visible to the caller
func (s *OrgProductService) Link(ctx context.Context, id uuid.UUID, req LinkOrgProductRequest) (*OrgProductResponse, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err(); err != nil {
		return nil, err
	}

	var product *catalog.OrgProduct
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrgProducts().LockByIDs(ctx, []uuid.UUID{id}); err != nil {
			return err
		}
		var err error
		product, err = repos.OrgProducts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		master, err := repos.MasterProducts().FindByID(ctx, req.MasterProductID)
		if err != nil {
			return err
		}
		if product.MasterProductID != nil && *product.MasterProductID == master.ID {
			return nil
		}
		if err := product.LinkMaster(master.ID); err != nil {
			return err
		}
		return repos.OrgProducts().SaveWithLock(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrgProductResponse(product)
	return &resp, nil
}

// GetByID returns one org product of the caller's organization
func (s *OrgProductService) GetByID(ctx context.Context, id uuid.UUID) (*OrgProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrgProductResponse(product)
	return &resp, nil
}

// List returns a page of the caller's org products
func (s *OrgProductService) List(ctx context.Context, filter OrgProductListFilter) (shared.Paginated[OrgProductResponse], error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}
	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return shared.Paginated[OrgProductResponse]{}, err
	}
	items := make([]OrgProductResponse, len(products))
	for i := range products {
		items[i] = ToOrgProductResponse(&products[i])
	}
	return shared.NewPaginated(items, total, max(filter.Page, 1), f.Limit()), nil
}

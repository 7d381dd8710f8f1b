package inventory

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService records stock movements and serial units of the caller's organization
type InventoryService struct {
	products catalog.OrgProductRepository
	ledger   inventory.StockLedgerRepository
	serials  inventory.SerialUnitRepository
	txScope  TransactionScope
	log      *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	products catalog.OrgProductRepository,
	ledger inventory.StockLedgerRepository,
	serials inventory.SerialUnitRepository,
	txScope TransactionScope,
	log *zap.Logger,
) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{
		products: products,
		ledger:   ledger,
		serials:  serials,
		txScope:  txScope,
		log:      log,
	}
}

func writer(ctx context.Context) (access.Principal, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return p, err
	}
	return p, access.Authorize(p, access.ActionWrite, access.TenantRow(p.OrgID)).Err()
}

// RecordMovement appends a manual movement for a quantity-tracked product. Outbound
// movements and negative adjustments may not take on-hand below zero.
func (s *InventoryService) RecordMovement(ctx context.Context, req StockMovementRequest) (*LedgerEntryResponse, error) {
	p, err := writer(ctx)
	if err != nil {
		return nil, err
	}
	createdBy := p.ID
	movement := inventory.Movement{
		TenantID:     p.OrgID,
		OrgProductID: req.OrgProductID,
		Quantity:     req.Quantity,
		SourceType:   inventory.SourceManual,
		Note:         req.Note,
		CreatedBy:    &createdBy,
	}

	var entry *inventory.StockLedgerEntry
	switch inventory.MovementType(req.Type) {
	case inventory.MovementIn:
		entry, err = inventory.NewStockIn(movement)
	case inventory.MovementOut:
		entry, err = inventory.NewStockOut(movement)
	case inventory.MovementAdjustment:
		entry, err = inventory.NewStockAdjustment(movement)
	default:
		err = shared.NewDomainError(shared.CodeInvalidInput, "Movement type must be in, out or adjustment")
	}
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrgProducts().LockByIDs(ctx, []uuid.UUID{req.OrgProductID}); err != nil {
			return err
		}
		product, err := repos.OrgProducts().FindByID(ctx, req.OrgProductID)
		if err != nil {
			return err
		}
		if product.IsSerialTracked() {
			return shared.NewDomainError(shared.CodeInvalidInput,
				"Serial-tracked products change stock through serial registration and invoices")
		}
		if entry.Quantity.IsNegative() {
			onHand, err := repos.StockLedger().SumOnHand(ctx, []uuid.UUID{product.ID})
			if err != nil {
				return err
			}
			if onHand[product.ID].Add(entry.Quantity).IsNegative() {
				return shared.ErrInsufficientStock
			}
		}
		return repos.StockLedger().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// RegisterSerials adds available serial units and the matching inbound ledger entry
func (s *InventoryService) RegisterSerials(ctx context.Context, req RegisterSerialsRequest) (*RegisterSerialsResponse, error) {
	p, err := writer(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(req.Serials))
	units := make([]*inventory.SerialUnit, 0, len(req.Serials))
	registered := make([]string, 0, len(req.Serials))
	for _, raw := range req.Serials {
		unit, err := inventory.NewSerialUnit(p.OrgID, req.OrgProductID, raw)
		if err != nil {
			return nil, err
		}
		if seen[unit.SerialNumber] {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Serial "+unit.SerialNumber+" is listed twice")
		}
		seen[unit.SerialNumber] = true
		units = append(units, unit)
		registered = append(registered, unit.SerialNumber)
	}
	if len(units) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one serial number is required")
	}

	createdBy := p.ID
	entry, err := inventory.NewStockIn(inventory.Movement{
		TenantID:     p.OrgID,
		OrgProductID: req.OrgProductID,
		Quantity:     decimal.NewFromInt(int64(len(units))),
		SourceType:   inventory.SourceManual,
		Note:         req.Note,
		CreatedBy:    &createdBy,
	})
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrgProducts().LockByIDs(ctx, []uuid.UUID{req.OrgProductID}); err != nil {
			return err
		}
		product, err := repos.OrgProducts().FindByID(ctx, req.OrgProductID)
		if err != nil {
			return err
		}
		if !product.IsSerialTracked() {
			return shared.NewDomainError(shared.CodeInvalidInput, "Product "+product.SKU+" is not serial-tracked")
		}
		if err := repos.SerialUnits().Register(ctx, units); err != nil {
			return err
		}
		return repos.StockLedger().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("serial units registered",
		zap.String("org_product_id", req.OrgProductID.String()),
		zap.Int("count", len(units)))
	return &RegisterSerialsResponse{Registered: registered, Entry: ToLedgerEntryResponse(entry)}, nil
}

// GetStockLevel returns on-hand quantity, and available units for serial-tracked products
func (s *InventoryService) GetStockLevel(ctx context.Context, productID uuid.UUID) (*StockLevelResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	onHand, err := s.ledger.SumOnHand(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, err
	}
	resp := &StockLevelResponse{
		OrgProductID: product.ID,
		TrackingMode: string(product.TrackingMode),
		OnHand:       onHand[product.ID],
	}
	if product.IsSerialTracked() {
		count, err := s.serials.CountAvailable(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		resp.AvailableSerials = &count
	}
	return resp, nil
}

// ListLedger returns a page of a product's ledger entries, newest first
func (s *InventoryService) ListLedger(ctx context.Context, productID uuid.UUID, filter shared.Filter) (shared.Paginated[LedgerEntryResponse], error) {
	entries, total, err := s.ledger.ListByProduct(ctx, productID, filter)
	if err != nil {
		return shared.Paginated[LedgerEntryResponse]{}, err
	}
	items := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToLedgerEntryResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, max(filter.Page, 1), filter.Limit()), nil
}

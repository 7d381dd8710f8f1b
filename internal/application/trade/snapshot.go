package trade

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// loadSnapshot reads what the validator needs through repos. Every read runs under the
// caller's tenant predicate, so products of other organizations are simply absent.
// Governance and tax state are only loaded for finalize-mode validation.
func (s *InvoiceService) loadSnapshot(ctx context.Context, repos TransactionalRepositories, items []trade.ItemInput, allowDraft bool) (trade.ValidationSnapshot, error) {
	snap := trade.ValidationSnapshot{
		Products: map[uuid.UUID]*catalog.OrgProduct{},
		Masters:  map[uuid.UUID]*catalog.MasterProduct{},
		Rates:    map[uuid.UUID]decimal.Decimal{},
		OnHand:   map[uuid.UUID]decimal.Decimal{},
	}
	ids := trade.ProductIDs(items)
	if len(ids) == 0 {
		return snap, nil
	}

	products, err := repos.OrgProducts().FindByIDs(ctx, ids)
	if err != nil {
		return snap, err
	}
	snap.Products = products

	var quantityIDs []uuid.UUID
	serials := make(map[uuid.UUID][]string)
	for _, id := range ids {
		product := products[id]
		if product == nil {
			continue
		}
		if !product.IsSerialTracked() {
			quantityIDs = append(quantityIDs, id)
		}
	}
	for _, item := range items {
		if product := products[item.OrgProductID]; product != nil && product.IsSerialTracked() {
			serials[product.ID] = append(serials[product.ID], item.Serials...)
		}
	}

	if len(quantityIDs) > 0 {
		onHand, err := repos.StockLedger().SumOnHand(ctx, quantityIDs)
		if err != nil {
			return snap, err
		}
		snap.OnHand = onHand
	}
	snap.AvailableSerials = make(map[uuid.UUID]map[string]*inventory.SerialUnit, len(serials))
	for productID, requested := range serials {
		available, err := repos.SerialUnits().FindAvailable(ctx, productID, requested)
		if err != nil {
			return snap, err
		}
		snap.AvailableSerials[productID] = available
	}

	if allowDraft {
		return snap, nil
	}
	return snap, s.loadGovernance(ctx, repos, &snap)
}

func (s *InvoiceService) loadGovernance(ctx context.Context, repos TransactionalRepositories, snap *trade.ValidationSnapshot) error {
	var masterIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, product := range snap.Products {
		if product.MasterProductID != nil && !seen[*product.MasterProductID] {
			seen[*product.MasterProductID] = true
			masterIDs = append(masterIDs, *product.MasterProductID)
		}
	}
	if len(masterIDs) == 0 {
		return nil
	}
	masters, err := repos.MasterProducts().FindByIDs(ctx, masterIDs)
	if err != nil {
		return err
	}
	snap.Masters = masters

	var codes []string
	for _, m := range masters {
		if m.TaxCode != nil {
			codes = append(codes, *m.TaxCode)
		}
	}
	taxCodes := map[string]*catalog.TaxCode{}
	if len(codes) > 0 {
		if taxCodes, err = s.taxCodes.FindByCodes(ctx, codes); err != nil {
			return err
		}
	}
	for id, m := range masters {
		var code *catalog.TaxCode
		if m.TaxCode != nil {
			code = taxCodes[*m.TaxCode]
		}
		if rate, ok := m.EffectiveTaxRate(code); ok {
			snap.Rates[id] = rate
		}
	}
	return nil
}

// lineRates maps each org product to the tax rate of its master
func lineRates(snap trade.ValidationSnapshot) map[uuid.UUID]decimal.Decimal {
	rates := make(map[uuid.UUID]decimal.Decimal, len(snap.Products))
	for id, product := range snap.Products {
		if product.MasterProductID == nil {
			continue
		}
		if rate, ok := snap.Rates[*product.MasterProductID]; ok {
			rates[id] = rate
		}
	}
	return rates
}

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	inventoryapp "github.com/bizgrid/backend/internal/application/inventory"
	tradeapp "github.com/bizgrid/backend/internal/application/trade"
	"github.com/bizgrid/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const standardTaxCode = "GST18"

// uniqueMobile returns a mobile number no other test uses. Master customers are
// shared across organizations, so tests cannot reuse identifiers.
func uniqueMobile() string {
	return fmt.Sprintf("+91%010d", uuid.New().ID())
}

// publishedProduct walks a product through the whole catalog path: the platform
// admin maintains the tax code, the owner submits, the admin approves, and the owner
// creates an org product linked to the approved entry.
func publishedProduct(t *testing.T, s *testutil.Stack, owner, admin context.Context, mode string) uuid.UUID {
	t.Helper()

	_, err := s.TaxCodes.Save(admin, standardTaxCode, catalogapp.SaveTaxCodeRequest{
		Rate:        decimal.NewFromInt(18),
		Description: "Standard rate",
	})
	require.NoError(t, err)

	sku := "SKU-" + uuid.NewString()[:8]
	master, err := s.Governance.Submit(owner, catalogapp.SubmitMasterProductRequest{
		Name:      "Catalog " + sku,
		SKU:       sku,
		BasePrice: decimal.NewFromInt(100),
		TaxCode:   standardTaxCode,
	})
	require.NoError(t, err)

	_, err = s.Governance.Review(admin, master.ID, catalogapp.ReviewRequest{Decision: "approve"})
	require.NoError(t, err)

	selling := decimal.NewFromInt(100)
	product, err := s.OrgProducts.Create(owner, catalogapp.CreateOrgProductRequest{
		Name:            "Product " + sku,
		SKU:             sku,
		TrackingMode:    mode,
		SellingPrice:    &selling,
		MasterProductID: &master.ID,
	})
	require.NoError(t, err)
	return product.ID
}

func stockIn(t *testing.T, s *testutil.Stack, ctx context.Context, productID uuid.UUID, qty int64) {
	t.Helper()
	_, err := s.Inventory.RecordMovement(ctx, inventoryapp.StockMovementRequest{
		OrgProductID: productID,
		Type:         "in",
		Quantity:     decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
}

func onHand(t *testing.T, s *testutil.Stack, ctx context.Context, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	level, err := s.Inventory.GetStockLevel(ctx, productID)
	require.NoError(t, err)
	return level.OnHand
}

func draft(t *testing.T, s *testutil.Stack, ctx context.Context, items ...tradeapp.ItemRequest) *tradeapp.InvoiceResponse {
	t.Helper()
	inv, err := s.Invoices.CreateDraft(ctx, tradeapp.SaveDraftRequest{Items: items})
	require.NoError(t, err)
	return inv
}

func line(productID uuid.UUID, qty int64, serials ...string) tradeapp.ItemRequest {
	return tradeapp.ItemRequest{
		OrgProductID: productID,
		Quantity:     decimal.NewFromInt(qty),
		UnitPrice:    decimal.NewFromInt(100),
		Serials:      serials,
	}
}

// race starts n calls of fn together and waits for all of them
func race(n int, fn func(i int)) {
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			fn(i)
		}(i)
	}
	start.Done()
	done.Wait()
}

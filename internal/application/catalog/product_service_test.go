package catalog

import (
	"context"
	"testing"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	products  *MockOrgProductRepository
	masters   *MockMasterProductRepository
	publisher *MockEventPublisher
	svc       *OrgProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:  new(MockOrgProductRepository),
		masters:   new(MockMasterProductRepository),
		publisher: new(MockEventPublisher),
	}
	f.svc = NewOrgProductService(f.products, f.masters, NewNoOpTransactionScope(f.products, f.masters), nil)
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func staffContext(orgID uuid.UUID) (context.Context, access.Principal) {
	p := access.Principal{ID: uuid.New(), OrgID: orgID, Role: access.RoleStaff}
	return access.WithPrincipal(context.Background(), p), p
}

func TestOrgProductService_Create_AutoLinksNewSubmission(t *testing.T) {
	f := newProductFixture()
	ctx, p := staffContext(uuid.New())
	selling := decimal.NewFromInt(120)

	f.products.On("ExistsBySKU", mock.Anything, "PHN-01").Return(false, nil)
	f.products.On("Create", mock.Anything, mock.AnythingOfType("*catalog.OrgProduct")).Return(nil)
	f.masters.On("FindPublishedByBarcode", mock.Anything, "8901234").Return(nil, shared.ErrNotFound)

	var created *catalog.MasterProduct
	f.masters.On("Create", mock.Anything, mock.AnythingOfType("*catalog.MasterProduct")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*catalog.MasterProduct) }).
		Return(nil)
	f.products.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*catalog.OrgProduct")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Create(ctx, CreateOrgProductRequest{
		Name:         "Phone",
		SKU:          "phn-01",
		Barcode:      "8901234",
		SellingPrice: &selling,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, catalog.ApprovalPending, created.ApprovalStatus)
	assert.Equal(t, p.OrgID, created.SubmittingOrg())
	assert.Equal(t, p.ID, *created.SubmittedBy)
	assert.True(t, selling.Equal(created.BasePrice))
	require.NotNil(t, resp.MasterProductID)
	assert.Equal(t, created.ID, *resp.MasterProductID)
	assert.Equal(t, "PHN-01", resp.SKU)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrgProductService_Create_LinksPublishedBarcodeMatch(t *testing.T) {
	f := newProductFixture()
	ctx, _ := staffContext(uuid.New())
	published := &catalog.MasterProduct{BaseAggregateRoot: shared.NewBaseAggregateRoot(), ApprovalStatus: catalog.ApprovalApproved}

	f.products.On("ExistsBySKU", mock.Anything, "TV-1").Return(false, nil)
	f.products.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.masters.On("FindPublishedByBarcode", mock.Anything, "555").Return(published, nil)
	f.products.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Create(ctx, CreateOrgProductRequest{Name: "TV", SKU: "TV-1", Barcode: "555"})
	require.NoError(t, err)
	assert.Equal(t, published.ID, *resp.MasterProductID)
	f.masters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrgProductService_Create_WithExplicitMaster(t *testing.T) {
	f := newProductFixture()
	ctx, _ := staffContext(uuid.New())
	master := &catalog.MasterProduct{BaseAggregateRoot: shared.NewBaseAggregateRoot(), ApprovalStatus: catalog.ApprovalAutoPass}

	f.products.On("ExistsBySKU", mock.Anything, "A1").Return(false, nil)
	f.masters.On("FindByID", mock.Anything, master.ID).Return(master, nil)
	f.products.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Create(ctx, CreateOrgProductRequest{Name: "A", SKU: "A1", MasterProductID: &master.ID})
	require.NoError(t, err)
	assert.Equal(t, master.ID, *resp.MasterProductID)
	f.products.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestOrgProductService_Create_Rejections(t *testing.T) {
	t.Run("duplicate sku", func(t *testing.T) {
		f := newProductFixture()
		ctx, _ := staffContext(uuid.New())
		f.products.On("ExistsBySKU", mock.Anything, "DUP").Return(true, nil)

		_, err := f.svc.Create(ctx, CreateOrgProductRequest{Name: "x", SKU: "dup"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("no tenant", func(t *testing.T) {
		f := newProductFixture()
		ctx := access.WithPrincipal(context.Background(), access.Principal{ID: uuid.New()})

		_, err := f.svc.Create(ctx, CreateOrgProductRequest{Name: "x", SKU: "x"})
		assert.ErrorIs(t, err, shared.ErrNoTenant)
	})

	t.Run("read only reviewer", func(t *testing.T) {
		f := newProductFixture()
		p := access.Principal{ID: uuid.New(), OrgID: uuid.New(), Role: access.RoleReadOnlyReviewer}
		ctx := access.WithPrincipal(context.Background(), p)

		_, err := f.svc.Create(ctx, CreateOrgProductRequest{Name: "x", SKU: "x"})
		assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)
		f.products.AssertNotCalled(t, "ExistsBySKU", mock.Anything, mock.Anything)
	})
}

func TestOrgProductService_AutoLink_AlreadyLinked(t *testing.T) {
	f := newProductFixture()
	ctx, p := staffContext(uuid.New())
	product, err := catalog.NewOrgProduct(p.OrgID, p.ID, "Cable", "CBL", catalog.TrackingQuantity)
	require.NoError(t, err)
	masterID := uuid.New()
	require.NoError(t, product.LinkMaster(masterID))

	f.products.On("LockByIDs", mock.Anything, []uuid.UUID{product.ID}).Return(nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	resp, err := f.svc.AutoLink(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, masterID, resp.MasterProductID)
	assert.False(t, resp.Created)
	f.masters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestOrgProductService_AutoLink_OtherTenantIsNotFound(t *testing.T) {
	f := newProductFixture()
	ctx, _ := staffContext(uuid.New())
	id := uuid.New()

	f.products.On("LockByIDs", mock.Anything, []uuid.UUID{id}).Return(nil)
	f.products.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.AutoLink(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrgProductService_Link_RejectsRelink(t *testing.T) {
	f := newProductFixture()
	ctx, p := staffContext(uuid.New())
	product, err := catalog.NewOrgProduct(p.OrgID, p.ID, "Cable", "CBL", catalog.TrackingQuantity)
	require.NoError(t, err)
	require.NoError(t, product.LinkMaster(uuid.New()))
	other := &catalog.MasterProduct{BaseAggregateRoot: shared.NewBaseAggregateRoot(), ApprovalStatus: catalog.ApprovalApproved}

	f.products.On("LockByIDs", mock.Anything, []uuid.UUID{product.ID}).Return(nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.masters.On("FindByID", mock.Anything, other.ID).Return(other, nil)

	_, err = f.svc.Link(ctx, product.ID, LinkOrgProductRequest{MasterProductID: other.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrgProductService_List(t *testing.T) {
	f := newProductFixture()
	ctx, p := staffContext(uuid.New())
	product, err := catalog.NewOrgProduct(p.OrgID, p.ID, "Cable", "CBL", catalog.TrackingQuantity)
	require.NoError(t, err)

	f.products.On("List", mock.Anything, shared.Filter{Page: 2, PageSize: 1, Search: "cb"}).
		Return([]catalog.OrgProduct{*product}, int64(3), nil)

	page, err := f.svc.List(ctx, OrgProductListFilter{Page: 2, PageSize: 1, Search: "cb"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
}

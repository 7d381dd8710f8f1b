package partner

import (
	"context"
	"testing"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMasterCustomerRegistry is a mock implementation of partner.MasterCustomerRegistry
type MockMasterCustomerRegistry struct {
	mock.Mock
}

func (m *MockMasterCustomerRegistry) Upsert(ctx context.Context, key partner.NaturalKey, legalName, stateCode string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, key, legalName, stateCode)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

// MockMasterCustomerRepository is a mock implementation of partner.MasterCustomerRepository
type MockMasterCustomerRepository struct {
	mock.Mock
}

func (m *MockMasterCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.MasterCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.MasterCustomer), args.Error(1)
}

// MockCustomerLinkRepository is a mock implementation of partner.CustomerLinkRepository
type MockCustomerLinkRepository struct {
	mock.Mock
}

func (m *MockCustomerLinkRepository) EnsureLink(ctx context.Context, link *partner.CustomerLink) (*partner.CustomerLink, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CustomerLink), args.Error(1)
}

func (m *MockCustomerLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.CustomerLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CustomerLink), args.Error(1)
}

func (m *MockCustomerLinkRepository) FindByMaster(ctx context.Context, masterID uuid.UUID) (*partner.CustomerLink, error) {
	args := m.Called(ctx, masterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CustomerLink), args.Error(1)
}

func (m *MockCustomerLinkRepository) List(ctx context.Context, filter shared.Filter) ([]partner.LinkedCustomer, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.LinkedCustomer), args.Get(1).(int64), args.Error(2)
}

type customerFixture struct {
	registry *MockMasterCustomerRegistry
	masters  *MockMasterCustomerRepository
	links    *MockCustomerLinkRepository
	svc      *CustomerService
	ctx      context.Context
	p        access.Principal
}

func newCustomerFixture() *customerFixture {
	f := &customerFixture{
		registry: new(MockMasterCustomerRegistry),
		masters:  new(MockMasterCustomerRepository),
		links:    new(MockCustomerLinkRepository),
		p:        access.Principal{ID: uuid.New(), OrgID: uuid.New(), Role: access.RoleStaff},
	}
	f.ctx = access.WithPrincipal(context.Background(), f.p)
	f.svc = NewCustomerService(f.registry, f.masters, f.links, nil)
	return f
}

func TestCustomerService_UpsertMasterCustomer_CreatesAndLinks(t *testing.T) {
	f := newCustomerFixture()
	key, err := partner.NormalizeNaturalKey("+91 98765-43210", "")
	require.NoError(t, err)
	master, err := partner.NewMasterCustomer(key, "Acme Traders", "KA")
	require.NoError(t, err)

	stored, err := partner.NewCustomerLink(f.p.OrgID, master.ID, f.p.ID, "Acme")
	require.NoError(t, err)

	f.registry.On("Upsert", mock.Anything, key, "Acme Traders", "KA").Return(master.ID, true, nil)
	f.links.On("EnsureLink", mock.Anything, mock.MatchedBy(func(l *partner.CustomerLink) bool {
		return l.TenantID == f.p.OrgID && l.MasterCustomerID == master.ID && l.Alias == "Acme"
	})).Return(stored, nil)
	f.masters.On("FindByID", mock.Anything, master.ID).Return(master, nil)

	resp, err := f.svc.UpsertMasterCustomer(f.ctx, UpsertCustomerRequest{
		Mobile:    "+91 98765-43210",
		LegalName: "Acme Traders",
		StateCode: "KA",
		Alias:     "Acme",
	})
	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.Equal(t, master.ID, resp.MasterCustomerID)
	assert.Equal(t, "Acme", resp.Alias)
	assert.Equal(t, "Acme Traders", resp.LegalName)
}

func TestCustomerService_UpsertMasterCustomer_ReusesExistingLink(t *testing.T) {
	f := newCustomerFixture()
	masterID := uuid.New()
	existing, err := partner.NewCustomerLink(f.p.OrgID, masterID, f.p.ID, "Old alias")
	require.NoError(t, err)
	master := &partner.MasterCustomer{ID: masterID, LegalName: "Original Name"}

	f.registry.On("Upsert", mock.Anything, mock.Anything, "Renamed Ltd", "").Return(masterID, false, nil)
	f.links.On("EnsureLink", mock.Anything, mock.Anything).Return(existing, nil)
	f.masters.On("FindByID", mock.Anything, masterID).Return(master, nil)

	resp, err := f.svc.UpsertMasterCustomer(f.ctx, UpsertCustomerRequest{TaxRegistrationNo: "29abcde1234f1z5", LegalName: "Renamed Ltd"})
	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Equal(t, existing.ID, resp.LinkID)
	assert.Equal(t, "Original Name", resp.LegalName)
	assert.Equal(t, "Old alias", resp.Alias)
}

func TestCustomerService_UpsertMasterCustomer_Rejections(t *testing.T) {
	t.Run("no identifier", func(t *testing.T) {
		f := newCustomerFixture()
		_, err := f.svc.UpsertMasterCustomer(f.ctx, UpsertCustomerRequest{Mobile: "  ", LegalName: "X"})
		assert.ErrorIs(t, err, shared.ErrIdentifierRequired)
		f.registry.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no tenant", func(t *testing.T) {
		f := newCustomerFixture()
		ctx := access.WithPrincipal(context.Background(), access.Principal{ID: uuid.New(), PlatformAdmin: true})
		_, err := f.svc.UpsertMasterCustomer(ctx, UpsertCustomerRequest{Mobile: "9876543210", LegalName: "X"})
		assert.ErrorIs(t, err, shared.ErrNoTenant)
	})

	t.Run("no principal", func(t *testing.T) {
		f := newCustomerFixture()
		_, err := f.svc.UpsertMasterCustomer(context.Background(), UpsertCustomerRequest{Mobile: "9876543210", LegalName: "X"})
		assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)
	})

	t.Run("read only reviewer", func(t *testing.T) {
		f := newCustomerFixture()
		ctx := access.WithPrincipal(context.Background(), access.Principal{ID: uuid.New(), OrgID: uuid.New(), Role: access.RoleReadOnlyReviewer})
		_, err := f.svc.UpsertMasterCustomer(ctx, UpsertCustomerRequest{Mobile: "9876543210", LegalName: "X"})
		assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)
	})
}

func TestCustomerService_ListLinked(t *testing.T) {
	f := newCustomerFixture()
	link, err := partner.NewCustomerLink(f.p.OrgID, uuid.New(), f.p.ID, "")
	require.NoError(t, err)
	linked := []partner.LinkedCustomer{{Link: *link, Master: partner.MasterCustomer{ID: link.MasterCustomerID, LegalName: "Acme"}}}

	f.links.On("List", mock.Anything, shared.Filter{Page: 1, PageSize: 10}).Return(linked, int64(1), nil)

	page, err := f.svc.ListLinked(f.ctx, CustomerListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Acme", page.Items[0].LegalName)
	assert.Equal(t, link.ID, page.Items[0].LinkID)
}

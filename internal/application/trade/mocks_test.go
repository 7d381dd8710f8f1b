package trade

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of trade.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter trade.InvoiceFilter) ([]trade.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *trade.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveDraft(ctx context.Context, invoice *trade.Invoice, expectedVersion int) error {
	args := m.Called(ctx, invoice, expectedVersion)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveState(ctx context.Context, invoice *trade.Invoice, expectedVersion int, expectedStatus trade.InvoiceStatus) error {
	args := m.Called(ctx, invoice, expectedVersion, expectedStatus)
	return args.Error(0)
}

func (m *MockInvoiceRepository) NextNumber(ctx context.Context, day time.Time) (string, error) {
	args := m.Called(ctx, day)
	return args.String(0), args.Error(1)
}

// MockOrgProductRepository is a mock implementation of catalog.OrgProductRepository
type MockOrgProductRepository struct {
	mock.Mock
}

func (m *MockOrgProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.OrgProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.OrgProduct), args.Error(1)
}

func (m *MockOrgProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.OrgProduct, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.OrgProduct), args.Error(1)
}

func (m *MockOrgProductRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockOrgProductRepository) List(ctx context.Context, filter shared.Filter) ([]catalog.OrgProduct, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.OrgProduct), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrgProductRepository) Create(ctx context.Context, p *catalog.OrgProduct) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOrgProductRepository) SaveWithLock(ctx context.Context, p *catalog.OrgProduct) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOrgProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

// MockMasterProductRepository is a mock implementation of catalog.MasterProductRepository
type MockMasterProductRepository struct {
	mock.Mock
}

func (m *MockMasterProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MasterProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MasterProduct), args.Error(1)
}

func (m *MockMasterProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.MasterProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MasterProduct), args.Error(1)
}

func (m *MockMasterProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.MasterProduct, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.MasterProduct), args.Error(1)
}

func (m *MockMasterProductRepository) FindPublishedByBarcode(ctx context.Context, barcode string) (*catalog.MasterProduct, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MasterProduct), args.Error(1)
}

func (m *MockMasterProductRepository) List(ctx context.Context, filter catalog.MasterProductFilter) ([]catalog.MasterProduct, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.MasterProduct), args.Get(1).(int64), args.Error(2)
}

func (m *MockMasterProductRepository) ListLegacyPending(ctx context.Context, afterID uuid.UUID, limit int) ([]catalog.MasterProduct, error) {
	args := m.Called(ctx, afterID, limit)
	return args.Get(0).([]catalog.MasterProduct), args.Error(1)
}

func (m *MockMasterProductRepository) Create(ctx context.Context, p *catalog.MasterProduct) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockStockLedgerRepository is a mock implementation of inventory.StockLedgerRepository
type MockStockLedgerRepository struct {
	mock.Mock
}

func (m *MockStockLedgerRepository) Append(ctx context.Context, entries ...*inventory.StockLedgerEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockStockLedgerRepository) SumOnHand(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockStockLedgerRepository) ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockLedgerEntry, int64, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]inventory.StockLedgerEntry), args.Get(1).(int64), args.Error(2)
}

// MockSerialUnitRepository is a mock implementation of inventory.SerialUnitRepository
type MockSerialUnitRepository struct {
	mock.Mock
}

func (m *MockSerialUnitRepository) Register(ctx context.Context, units []*inventory.SerialUnit) error {
	return m.Called(ctx, units).Error(0)
}

func (m *MockSerialUnitRepository) FindAvailable(ctx context.Context, productID uuid.UUID, serials []string) (map[string]*inventory.SerialUnit, error) {
	args := m.Called(ctx, productID, serials)
	return args.Get(0).(map[string]*inventory.SerialUnit), args.Error(1)
}

func (m *MockSerialUnitRepository) MarkSold(ctx context.Context, productID uuid.UUID, serials []string, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID, serials, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSerialUnitRepository) ReleaseByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return m.Called(ctx, invoiceID).Error(0)
}

func (m *MockSerialUnitRepository) CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTaxCodeRepository is a mock implementation of catalog.TaxCodeRepository
type MockTaxCodeRepository struct {
	mock.Mock
}

func (m *MockTaxCodeRepository) FindByCode(ctx context.Context, code string) (*catalog.TaxCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TaxCode), args.Error(1)
}

func (m *MockTaxCodeRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*catalog.TaxCode, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(map[string]*catalog.TaxCode), args.Error(1)
}

func (m *MockTaxCodeRepository) List(ctx context.Context, activeOnly bool) ([]catalog.TaxCode, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.TaxCode), args.Error(1)
}

// MockOrganizationRepository is a mock implementation of identity.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) SaveWithLock(ctx context.Context, org *identity.Organization) error {
	return m.Called(ctx, org).Error(0)
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

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

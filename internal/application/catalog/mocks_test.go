package catalog

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

// MockTaxCodeAdmin is a mock implementation of catalog.TaxCodeAdmin
type MockTaxCodeAdmin struct {
	mock.Mock
}

func (m *MockTaxCodeAdmin) Save(ctx context.Context, code *catalog.TaxCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockReviewAuditRepository is a mock implementation of catalog.ReviewAuditRepository
type MockReviewAuditRepository struct {
	mock.Mock
}

func (m *MockReviewAuditRepository) ListByMasterProduct(ctx context.Context, masterProductID uuid.UUID) ([]catalog.ReviewAuditRecord, error) {
	args := m.Called(ctx, masterProductID)
	return args.Get(0).([]catalog.ReviewAuditRecord), args.Error(1)
}

// MockGovernanceRecorder is a mock implementation of catalog.GovernanceRecorder
type MockGovernanceRecorder struct {
	mock.Mock
}

func (m *MockGovernanceRecorder) RecordTransition(ctx context.Context, p *catalog.MasterProduct, expectedVersion int, expectedStatus catalog.ApprovalStatus, record *catalog.ReviewAuditRecord) error {
	args := m.Called(ctx, p, expectedVersion, expectedStatus, record)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

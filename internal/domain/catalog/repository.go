package catalog

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MasterProductFilter narrows catalog listings
type MasterProductFilter struct {
	shared.Filter
	Status  ApprovalStatus
	Barcode string
	SKU     string
}

// MasterProductRepository reads and writes catalog entries. Reads are limited to the
// rows visible to the acting principal.
type MasterProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MasterProduct, error)
	// FindByIDForUpdate reads the row under a row lock; only meaningful inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*MasterProduct, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*MasterProduct, error)
	// FindPublishedByBarcode returns an approved or auto-passed entry with the barcode
	FindPublishedByBarcode(ctx context.Context, barcode string) (*MasterProduct, error)
	List(ctx context.Context, filter MasterProductFilter) ([]MasterProduct, int64, error)
	ListLegacyPending(ctx context.Context, afterID uuid.UUID, limit int) ([]MasterProduct, error)
	// Create stores a new pending submission of the caller's organization
	Create(ctx context.Context, p *MasterProduct) error
}

// GovernanceRecorder is the only write path for governance transitions. It stores the
// entry only if the row still has expectedVersion and expectedStatus (else
// shared.ErrStaleState) and appends the audit record in the same unit of work.
type GovernanceRecorder interface {
	RecordTransition(ctx context.Context, p *MasterProduct, expectedVersion int, expectedStatus ApprovalStatus, record *ReviewAuditRecord) error
}

// OrgProductRepository persists org products of the caller's organization
type OrgProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrgProduct, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*OrgProduct, error)
	// LockByIDs takes row locks on the given products in id order
	LockByIDs(ctx context.Context, ids []uuid.UUID) error
	List(ctx context.Context, filter shared.Filter) ([]OrgProduct, int64, error)
	Create(ctx context.Context, p *OrgProduct) error
	SaveWithLock(ctx context.Context, p *OrgProduct) error
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}

// TaxCodeRepository reads the tax code reference table
type TaxCodeRepository interface {
	FindByCode(ctx context.Context, code string) (*TaxCode, error)
	FindByCodes(ctx context.Context, codes []string) (map[string]*TaxCode, error)
	List(ctx context.Context, activeOnly bool) ([]TaxCode, error)
}

// TaxCodeAdmin writes tax codes; only platform admins may use it
type TaxCodeAdmin interface {
	Save(ctx context.Context, code *TaxCode) error
}

// ReviewAuditRepository reads the append-only governance trail
type ReviewAuditRepository interface {
	ListByMasterProduct(ctx context.Context, masterProductID uuid.UUID) ([]ReviewAuditRecord, error)
}

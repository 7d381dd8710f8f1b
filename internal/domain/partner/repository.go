package partner

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MasterCustomerRegistry is the only write path into master customers. It resolves a
// natural key to an existing master or creates one, converging concurrent callers on
// a single row.
type MasterCustomerRegistry interface {
	Upsert(ctx context.Context, key NaturalKey, legalName, stateCode string) (uuid.UUID, bool, error)
}

// MasterCustomerRepository reads master customers visible to the acting principal
type MasterCustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MasterCustomer, error)
}

// LinkedCustomer is a customer link joined with its master identity
type LinkedCustomer struct {
	Link   CustomerLink
	Master MasterCustomer
}

// CustomerLinkRepository persists links of the caller's organization
type CustomerLinkRepository interface {
	// EnsureLink inserts the link unless one already exists for the same pair and
	// returns the stored link either way.
	EnsureLink(ctx context.Context, link *CustomerLink) (*CustomerLink, error)
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerLink, error)
	FindByMaster(ctx context.Context, masterID uuid.UUID) (*CustomerLink, error)
	List(ctx context.Context, filter shared.Filter) ([]LinkedCustomer, int64, error)
}

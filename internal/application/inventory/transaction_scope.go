package inventory

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/inventory"
)

// TransactionScope runs a stock movement as one unit of work. A non-nil error from
// fn rolls the whole movement back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories a movement writes through. Every
// movement first locks its org product row, which orders it against concurrent
// movements and invoice finalization on the same product.
type TransactionalRepositories interface {
	OrgProducts() catalog.OrgProductRepository
	StockLedger() inventory.StockLedgerRepository
	SerialUnits() inventory.SerialUnitRepository
}

// NoOpTransactionScope hands fn the repositories it was built with and commits
// nothing itself. Unit tests use it with mocks.
type NoOpTransactionScope struct {
	products catalog.OrgProductRepository
	ledger   inventory.StockLedgerRepository
	serials  inventory.SerialUnitRepository
}

func NewNoOpTransactionScope(products catalog.OrgProductRepository, ledger inventory.StockLedgerRepository, serials inventory.SerialUnitRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, ledger: ledger, serials: serials}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrgProducts() catalog.OrgProductRepository    { return s.products }
func (s *NoOpTransactionScope) StockLedger() inventory.StockLedgerRepository { return s.ledger }
func (s *NoOpTransactionScope) SerialUnits() inventory.SerialUnitRepository  { return s.serials }

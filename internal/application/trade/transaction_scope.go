package trade

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to invoice repositories.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories finalization touches.
// The validation snapshot is read through the same interface so the commit-time
// re-check sees the locked rows.
type TransactionalRepositories interface {
	Invoices() trade.InvoiceRepository
	OrgProducts() catalog.OrgProductRepository
	MasterProducts() catalog.MasterProductRepository
	StockLedger() inventory.StockLedgerRepository
	SerialUnits() inventory.SerialUnitRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// The service also uses it as its non-transactional read path.
type NoOpTransactionScope struct {
	invoices    trade.InvoiceRepository
	orgProducts catalog.OrgProductRepository
	masters     catalog.MasterProductRepository
	ledger      inventory.StockLedgerRepository
	serials     inventory.SerialUnitRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoices trade.InvoiceRepository,
	orgProducts catalog.OrgProductRepository,
	masters catalog.MasterProductRepository,
	ledger inventory.StockLedgerRepository,
	serials inventory.SerialUnitRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoices:    invoices,
		orgProducts: orgProducts,
		masters:     masters,
		ledger:      ledger,
		serials:     serials,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Invoices returns the invoice repository.
func (s *NoOpTransactionScope) Invoices() trade.InvoiceRepository {
	return s.invoices
}

// OrgProducts returns the org product repository.
func (s *NoOpTransactionScope) OrgProducts() catalog.OrgProductRepository {
	return s.orgProducts
}

// MasterProducts returns the master product repository.
func (s *NoOpTransactionScope) MasterProducts() catalog.MasterProductRepository {
	return s.masters
}

// StockLedger returns the stock ledger repository.
func (s *NoOpTransactionScope) StockLedger() inventory.StockLedgerRepository {
	return s.ledger
}

// SerialUnits returns the serial unit repository.
func (s *NoOpTransactionScope) SerialUnits() inventory.SerialUnitRepository {
	return s.serials
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

package catalog

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to catalog repositories.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories sharing one transaction.
// Auto-linking creates the master product and links the org product in the same unit.
type TransactionalRepositories interface {
	OrgProducts() catalog.OrgProductRepository
	MasterProducts() catalog.MasterProductRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	orgProducts    catalog.OrgProductRepository
	masterProducts catalog.MasterProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(orgProducts catalog.OrgProductRepository, masterProducts catalog.MasterProductRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orgProducts: orgProducts, masterProducts: masterProducts}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrgProducts returns the org product repository
func (s *NoOpTransactionScope) OrgProducts() catalog.OrgProductRepository {
	return s.orgProducts
}

// MasterProducts returns the master product repository
func (s *NoOpTransactionScope) MasterProducts() catalog.MasterProductRepository {
	return s.masterProducts
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

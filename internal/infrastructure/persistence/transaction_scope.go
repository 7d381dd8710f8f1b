package persistence

import (
	"context"

	appcatalog "github.com/bizgrid/backend/internal/application/catalog"
	appinventory "github.com/bizgrid/backend/internal/application/inventory"
	apptrade "github.com/bizgrid/backend/internal/application/trade"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// txRepositories builds every repository over one open transaction. It satisfies
// the repository sets of all application packages.
type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) OrgProducts() catalog.OrgProductRepository {
	return NewGormOrgProductRepository(r.tx)
}

func (r txRepositories) MasterProducts() catalog.MasterProductRepository {
	return NewGormMasterProductRepository(r.tx)
}

func (r txRepositories) StockLedger() inventory.StockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

func (r txRepositories) SerialUnits() inventory.SerialUnitRepository {
	return NewGormSerialUnitRepository(r.tx)
}

func (r txRepositories) Invoices() trade.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// TxScope runs a unit of work in one database transaction, exposing the
// repositories as R. The transaction inherits the caller's principal through ctx,
// so every statement inside it is still tenant scoped. Row locks taken with
// FOR UPDATE are held until fn returns.
type TxScope[R any] struct {
	db *gorm.DB
}

// Execute commits when fn returns nil and rolls back otherwise
func (s *TxScope[R]) Execute(ctx context.Context, fn func(repos R) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(any(txRepositories{tx: tx}).(R))
	})
}

func NewGormCatalogTransactionScope(db *gorm.DB) *TxScope[appcatalog.TransactionalRepositories] {
	return &TxScope[appcatalog.TransactionalRepositories]{db: db}
}

func NewGormInventoryTransactionScope(db *gorm.DB) *TxScope[appinventory.TransactionalRepositories] {
	return &TxScope[appinventory.TransactionalRepositories]{db: db}
}

func NewGormTradeTransactionScope(db *gorm.DB) *TxScope[apptrade.TransactionalRepositories] {
	return &TxScope[apptrade.TransactionalRepositories]{db: db}
}

var (
	_ appcatalog.TransactionScope   = (*TxScope[appcatalog.TransactionalRepositories])(nil)
	_ appinventory.TransactionScope = (*TxScope[appinventory.TransactionalRepositories])(nil)
	_ apptrade.TransactionScope     = (*TxScope[apptrade.TransactionalRepositories])(nil)

	_ appcatalog.TransactionalRepositories   = txRepositories{}
	_ appinventory.TransactionalRepositories = txRepositories{}
	_ apptrade.TransactionalRepositories     = txRepositories{}
)

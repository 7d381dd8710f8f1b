package persistence

import (
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// InvoiceSequence holds the last invoice number issued by an organization on a day
type InvoiceSequence struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day       string    `gorm:"type:varchar(8);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

// Models lists every persisted model. Production schemas come from the SQL
// migrations; tests build the same tables with AutoMigrate.
func Models() []any {
	return []any{
		&identity.Organization{},
		&identity.Membership{},
		&identity.PlatformAdminGrant{},
		&catalog.TaxCode{},
		&catalog.MasterProduct{},
		&catalog.OrgProduct{},
		&catalog.ReviewAuditRecord{},
		&partner.MasterCustomer{},
		&partner.CustomerLink{},
		&inventory.StockLedgerEntry{},
		&inventory.SerialUnit{},
		&trade.Invoice{},
		&trade.InvoiceLine{},
		&InvoiceSequence{},
	}
}

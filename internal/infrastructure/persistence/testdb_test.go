package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func errRecordNotFound() error { return gorm.ErrRecordNotFound }
func errDuplicated() error     { return gorm.ErrDuplicatedKey }

// newTestDB opens a private in-memory sqlite database. Tables are created before the
// tenant guard is installed.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true, TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	require.NoError(t, Configure(db, zap.NewNop(), telemetry.DBTracingConfig{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// seedOrg inserts an organization and returns a principal with role in it
func seedOrg(t *testing.T, db *gorm.DB, name string, role access.Role) (context.Context, access.Principal) {
	t.Helper()
	org, err := identity.NewOrganization(name, "", "KA")
	require.NoError(t, err)
	require.NoError(t, fixtures(db).Create(org).Error)

	p := access.Principal{ID: uuid.New(), OrgID: org.ID, Role: role}
	m, err := identity.NewMembership(org.ID, p.ID, role)
	require.NoError(t, err)
	require.NoError(t, fixtures(db).Create(m).Error)
	return access.WithPrincipal(context.Background(), p), p
}

// fixtures returns a session elevated for every table, for seeding test data
func fixtures(db *gorm.DB) *gorm.DB {
	var grants []elevation.Grant
	for _, table := range fixtureTables {
		for _, op := range []elevation.Operation{elevation.Query, elevation.Create, elevation.Update, elevation.Delete} {
			grants = append(grants, elevation.Grant{Table: table, Op: op})
		}
	}
	ctx := elevation.With(context.Background(), elevation.Elevation{Reason: "test fixtures", Grants: grants})
	return db.Session(&gorm.Session{NewDB: true, Context: ctx})
}

var fixtureTables = []string{
	"organizations", "memberships", "platform_admin_grants", "tax_codes",
	"master_products", "org_products", "review_audit_records", "master_customers",
	"customer_links", "stock_ledger_entries", "serial_units", "invoices",
	"invoice_lines", "invoice_sequences",
}

package testutil

import (
	"context"
	"testing"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	identityapp "github.com/bizgrid/backend/internal/application/identity"
	inventoryapp "github.com/bizgrid/backend/internal/application/inventory"
	partnerapp "github.com/bizgrid/backend/internal/application/partner"
	tradeapp "github.com/bizgrid/backend/internal/application/trade"
	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/trusted"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Stack is the application layer wired over a TestDB the same way cmd/server wires it,
// minus the cache and the event bus.
type Stack struct {
	DB *TestDB

	Organizations *identityapp.OrganizationService
	Governance    *catalogapp.GovernanceService
	OrgProducts   *catalogapp.OrgProductService
	TaxCodes      *catalogapp.TaxCodeService
	Customers     *partnerapp.CustomerService
	Inventory     *inventoryapp.InventoryService
	Invoices      *tradeapp.InvoiceService

	Directory *trusted.PrincipalDirectory
	Admins    *trusted.PlatformAdminGrants
}

// NewStack connects to the shared database and builds every service
func NewStack(t *testing.T) *Stack {
	t.Helper()
	tdb := NewTestDB(t)
	db := tdb.DB
	log := zap.NewNop()

	organizations := persistence.NewGormOrganizationRepository(db)
	memberships := persistence.NewGormMembershipRepository(db)
	masters := persistence.NewGormMasterProductRepository(db)
	orgProducts := persistence.NewGormOrgProductRepository(db)
	taxCodes := persistence.NewGormTaxCodeRepository(db)
	audits := persistence.NewGormReviewAuditRepository(db)
	masterCustomers := persistence.NewGormMasterCustomerRepository(db)
	links := persistence.NewGormCustomerLinkRepository(db)
	ledger := persistence.NewGormStockLedgerRepository(db)
	serials := persistence.NewGormSerialUnitRepository(db)

	return &Stack{
		DB: tdb,
		Organizations: identityapp.NewOrganizationService(organizations, memberships,
			trusted.NewOrganizationRegistrar(db, log, nil), 8, log),
		Governance: catalogapp.NewGovernanceService(masters, taxCodes, audits,
			trusted.NewGovernanceRecorder(db, log, nil), log),
		OrgProducts: catalogapp.NewOrgProductService(orgProducts, masters,
			persistence.NewGormCatalogTransactionScope(db), log),
		TaxCodes: catalogapp.NewTaxCodeService(taxCodes, trusted.NewTaxCodeAdmin(db, log, nil), log),
		Customers: partnerapp.NewCustomerService(trusted.NewMasterCustomerRegistry(db, log, nil),
			masterCustomers, links, log),
		Inventory: inventoryapp.NewInventoryService(orgProducts, ledger, serials,
			persistence.NewGormInventoryTransactionScope(db), log),
		Invoices: tradeapp.NewInvoiceService(tradeapp.InvoiceServiceDeps{
			Invoices:       persistence.NewGormInvoiceRepository(db),
			OrgProducts:    orgProducts,
			MasterProducts: masters,
			StockLedger:    ledger,
			SerialUnits:    serials,
			TaxCodes:       taxCodes,
			Organizations:  organizations,
			CustomerLinks:  links,
			Customers:      masterCustomers,
			TxScope:        persistence.NewGormTradeTransactionScope(db),
			Logger:         log,
		}),
		Directory: trusted.NewPrincipalDirectory(db, log, nil),
		Admins:    trusted.NewPlatformAdminGrants(db, log, nil),
	}
}

// As resolves principalID through the directory, the way the auth middleware does,
// and returns a context carrying the result
func (s *Stack) As(t *testing.T, principalID uuid.UUID) context.Context {
	t.Helper()
	p, err := s.Directory.Resolve(context.Background(), principalID)
	require.NoError(t, err)
	return access.WithPrincipal(context.Background(), p)
}

// Signup creates an organization owned by a fresh principal and returns the owner's
// context. Slugs are unique across the shared database so each one gets a suffix.
func (s *Stack) Signup(t *testing.T, name, jurisdiction string) (context.Context, access.Principal) {
	t.Helper()
	owner := uuid.New()
	newcomer := access.WithPrincipal(context.Background(), access.Principal{ID: owner})

	_, err := s.Organizations.Signup(newcomer, identityapp.SignupInput{
		Name:             name,
		Slug:             name + " " + uuid.NewString()[:8],
		HomeJurisdiction: jurisdiction,
	})
	require.NoError(t, err)

	ctx := s.As(t, owner)
	p, _ := access.PrincipalFromContext(ctx)
	return ctx, p
}

// AddMember adds a fresh principal with role to the owner's organization
func (s *Stack) AddMember(t *testing.T, ownerCtx context.Context, role access.Role) context.Context {
	t.Helper()
	principalID := uuid.New()
	_, err := s.Organizations.AddMember(ownerCtx, identityapp.AddMemberInput{PrincipalID: principalID, Role: string(role)})
	require.NoError(t, err)
	return s.As(t, principalID)
}

// PlatformAdmin grants platform admin to a fresh principal outside any organization
func (s *Stack) PlatformAdmin(t *testing.T) context.Context {
	t.Helper()
	principalID := uuid.New()
	require.NoError(t, s.Admins.Grant(access.WithPrincipal(context.Background(), access.System()), principalID))
	return s.As(t, principalID)
}

// Package tenant enforces row-level tenant isolation inside GORM.
//
// Every statement is checked against the principal stored in its context with
// access.Authorize. Rows carrying a tenant_id column are limited to the caller's
// organization; master tables (catalog, customers, tax codes) get the governance
// visibility predicate and reject writes unless the statement runs under an
// elevation minted by the trusted boundary.
//
// Usage:
//
//	if err := tenant.Register(db, log); err != nil { ... }
//	ctx := access.WithPrincipal(ctx, principal)
//	db.WithContext(ctx).Find(&products) // WHERE tenant_id = <principal org> is added
package tenant

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/internal/elevation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Column is the tenant ownership column
const Column = "tenant_id"

// Tables without a tenant column that the guard governs
const (
	TableOrganizations       = "organizations"
	TablePlatformAdminGrants = "platform_admin_grants"
	TableMasterProducts      = "master_products"
	TableMasterCustomers     = "master_customers"
	TableTaxCodes            = "tax_codes"
	TableReviewAuditRecords  = "review_audit_records"
)

var (
	// ErrNoPrincipal is returned for statements issued without an acting principal
	ErrNoPrincipal = shared.NewDomainError(shared.CodeAuthorizationDenied, "Request has no authenticated principal")
	// ErrUnscopedRaw is returned for prebuilt SQL against a governed table
	ErrUnscopedRaw = shared.NewDomainError(shared.CodeAuthorizationDenied, "Raw SQL against a protected table requires elevation")
	// ErrUnsafeUpsert is returned for conflict updates that could touch another tenant's row
	ErrUnsafeUpsert = shared.NewDomainError(shared.CodeAuthorizationDenied, "Conflict updates must be keyed by tenant")
)

// Guard is the GORM callback set enforcing isolation
type Guard struct {
	log *zap.Logger
}

// Register installs the guard callbacks on db
func Register(db *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Guard{log: log.Named("tenant_guard")}
	cb := db.Callback()

	if err := cb.Query().Before("gorm:query").Register("tenant:guard_query", g.handler(elevation.Query)); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenant:guard_row", g.handler(elevation.Query)); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("tenant:guard_create", g.handler(elevation.Create)); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:guard_update", g.handler(elevation.Update)); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:guard_delete", g.handler(elevation.Delete)); err != nil {
		return err
	}
	return cb.Raw().Before("gorm:raw").Register("tenant:guard_raw", g.handler(elevation.Update))
}

func (g *Guard) handler(op elevation.Operation) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil {
			return
		}
		if err := g.check(db, op); err != nil {
			_ = db.AddError(err)
		}
	}
}

func (g *Guard) check(db *gorm.DB, op elevation.Operation) error {
	stmt := db.Statement
	table := stmt.Table
	if table == "" && stmt.Schema != nil {
		table = stmt.Schema.Table
	}
	if stmt.SQL.Len() > 0 {
		return g.checkPrebuilt(stmt, stmt.SQL.String(), table, op)
	}
	if sources := opaqueSources(stmt); sources != "" {
		if err := g.checkPrebuilt(stmt, sources, "", op); err != nil {
			return err
		}
	}
	if table == "" {
		return nil
	}

	tenantField := tenantFieldOf(stmt)
	tenantScoped := tenantField != nil || isTenantTable(table)
	if !tenantScoped && !isMasterTable(table) {
		return nil
	}

	ctx := stmt.Context
	if e, ok := elevation.From(ctx); ok && e.Allows(table, op) {
		g.log.Debug("elevated statement",
			zap.String("table", table),
			zap.String("op", string(op)),
			zap.String("reason", e.Reason),
		)
		return nil
	}
	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		return ErrNoPrincipal
	}

	if tenantScoped {
		return g.checkTenantRow(ctx, stmt, tenantField, p, op)
	}

	switch table {
	case TableOrganizations:
		return checkOrganization(stmt, p, op)
	case TableMasterProducts:
		return checkMasterProduct(ctx, stmt, p, op)
	case TableMasterCustomers:
		return checkMasterCustomer(stmt, p, op)
	case TableTaxCodes:
		if op != elevation.Query {
			return shared.ErrAuthorizationDenied
		}
		return access.Authorize(p, access.ActionRead, access.Resource{Kind: access.KindTaxCode}).Err()
	case TableReviewAuditRecords:
		return checkReviewAudit(stmt, p, op)
	default:
		// platform_admin_grants and any other registered table: elevation only
		return shared.ErrAuthorizationDenied
	}
}

// tenantTables lists the tables carrying a tenant column. Statements naming one are
// scoped even when their model or destination has no tenant field.
var tenantTables = []string{
	"memberships", "org_products", "customer_links", "stock_ledger_entries",
	"serial_units", "invoices", "invoice_lines", "invoice_sequences",
}

var governedTablePattern = regexp.MustCompile(`\b(` + strings.Join(append(append([]string{}, tenantTables...),
	TableOrganizations, TablePlatformAdminGrants, TableMasterProducts,
	TableMasterCustomers, TableTaxCodes, TableReviewAuditRecords), "|") + `)\b`)

// checkPrebuilt governs Raw and Exec statements, table expressions and joins. The
// predicate cannot be injected into hand-written SQL, so SQL naming a governed table
// needs an elevation covering every such table.
func (g *Guard) checkPrebuilt(stmt *gorm.Statement, sql, table string, op elevation.Operation) error {
	tables := governedTablePattern.FindAllString(strings.ToLower(sql), -1)
	if table != "" {
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		return nil
	}
	e, ok := elevation.From(stmt.Context)
	if !ok {
		return ErrUnscopedRaw
	}
	for _, t := range tables {
		if !e.Allows(t, op) {
			return ErrUnscopedRaw
		}
	}
	g.log.Debug("elevated raw statement", zap.Strings("tables", tables), zap.String("reason", e.Reason))
	return nil
}

// opaqueSources returns the hand-written SQL a builder statement reads from besides
// its own table: a table expression other than a plain name, and raw joins.
func opaqueSources(stmt *gorm.Statement) string {
	var b strings.Builder
	if stmt.TableExpr != nil && strings.Trim(stmt.TableExpr.SQL, "`\"") != stmt.Table {
		b.WriteString(stmt.TableExpr.SQL)
	}
	for _, j := range stmt.Joins {
		b.WriteString(" ")
		b.WriteString(j.Name)
	}
	return b.String()
}

func isTenantTable(table string) bool {
	for _, t := range tenantTables {
		if t == table {
			return true
		}
	}
	return false
}

func isMasterTable(table string) bool {
	switch table {
	case TableOrganizations, TablePlatformAdminGrants, TableMasterProducts,
		TableMasterCustomers, TableTaxCodes, TableReviewAuditRecords:
		return true
	}
	return false
}

func tenantFieldOf(stmt *gorm.Statement) *schema.Field {
	if stmt.Schema == nil {
		return nil
	}
	return stmt.Schema.LookUpField(Column)
}

func (g *Guard) checkTenantRow(ctx context.Context, stmt *gorm.Statement, field *schema.Field, p access.Principal, op elevation.Operation) error {
	action := access.ActionWrite
	if op == elevation.Query {
		action = access.ActionRead
	}
	if err := access.Authorize(p, action, access.TenantRow(p.OrgID)).Err(); err != nil {
		return err
	}

	switch op {
	case elevation.Create:
		if field == nil {
			// rows without a tenant field cannot be stamped
			return shared.ErrAuthorizationDenied
		}
		if err := checkConflictKeyedByTenant(stmt); err != nil {
			return err
		}
		return stampTenant(ctx, stmt, field, p)
	case elevation.Update:
		if err := checkTenantNotReassigned(ctx, stmt, field, p.OrgID); err != nil {
			return err
		}
	}
	addPredicate(stmt, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: Column},
		Value:  p.OrgID,
	})
	return nil
}

// addPredicate ANDs expr onto the statement's WHERE clause. Existing conditions are
// grouped first so that a caller's OR cannot escape the predicate.
func addPredicate(stmt *gorm.Statement, expr clause.Expression) {
	if c, ok := stmt.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok && len(where.Exprs) > 1 {
			c.Expression = clause.Where{Exprs: []clause.Expression{clause.And(where.Exprs...)}}
			stmt.Clauses["WHERE"] = c
		}
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{expr}})
}

func checkConflictKeyedByTenant(stmt *gorm.Statement) error {
	c, ok := stmt.Clauses["ON CONFLICT"]
	if !ok {
		return nil
	}
	oc, ok := c.Expression.(clause.OnConflict)
	if !ok || (!oc.UpdateAll && len(oc.DoUpdates) == 0) {
		return nil
	}
	for _, col := range oc.Columns {
		if col.Name == Column {
			return nil
		}
	}
	return ErrUnsafeUpsert
}

// stampTenant sets the tenant of new rows to the caller's organization and refuses
// rows already assigned to another one.
func stampTenant(ctx context.Context, stmt *gorm.Statement, field *schema.Field, p access.Principal) error {
	return eachRow(stmt, func(row reflect.Value) error {
		v, zero := field.ValueOf(ctx, row)
		if zero {
			return field.Set(ctx, row, p.OrgID)
		}
		owner, ok := v.(uuid.UUID)
		if !ok {
			return shared.ErrAuthorizationDenied
		}
		return access.Authorize(p, access.ActionWrite, access.TenantRow(owner)).Err()
	})
}

func checkTenantNotReassigned(ctx context.Context, stmt *gorm.Statement, field *schema.Field, orgID uuid.UUID) error {
	switch dest := stmt.Dest.(type) {
	case map[string]interface{}:
		if v, ok := dest[Column]; ok && v != orgID {
			return shared.ErrAuthorizationDenied
		}
		if field == nil {
			return nil
		}
		if v, ok := dest[field.Name]; ok && v != orgID {
			return shared.ErrAuthorizationDenied
		}
		return nil
	}
	if field == nil {
		return nil
	}
	rv := reflect.Indirect(reflect.ValueOf(stmt.Dest))
	if rv.Kind() != reflect.Struct || rv.Type() != stmt.Schema.ModelType {
		return nil
	}
	v, zero := field.ValueOf(ctx, rv)
	if zero {
		return nil
	}
	if owner, ok := v.(uuid.UUID); !ok || owner != orgID {
		return shared.ErrAuthorizationDenied
	}
	return nil
}

func eachRow(stmt *gorm.Statement, fn func(reflect.Value) error) error {
	rv := stmt.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := fn(reflect.Indirect(rv.Index(i))); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		return fn(rv)
	default:
		// map based creates cannot be inspected
		return shared.ErrAuthorizationDenied
	}
}

func checkOrganization(stmt *gorm.Statement, p access.Principal, op elevation.Operation) error {
	idColumn := clause.Column{Table: clause.CurrentTable, Name: "id"}
	switch op {
	case elevation.Query:
		if p.PlatformAdmin {
			return nil
		}
		if !p.HasTenant() {
			return shared.ErrNoTenant
		}
		addPredicate(stmt, clause.Eq{Column: idColumn, Value: p.OrgID})
		return nil
	case elevation.Update:
		resource := access.Resource{Kind: access.KindOrganization, OrgID: p.OrgID}
		if err := access.Authorize(p, access.ActionWrite, resource).Err(); err != nil {
			return err
		}
		addPredicate(stmt, clause.Eq{Column: idColumn, Value: p.OrgID})
		return nil
	default:
		// organizations are created by the registrar and never hard-deleted
		return shared.ErrAuthorizationDenied
	}
}

func checkMasterProduct(ctx context.Context, stmt *gorm.Statement, p access.Principal, op elevation.Operation) error {
	switch op {
	case elevation.Query:
		scope, err := access.MasterReadScope(p)
		if err != nil {
			return err
		}
		if scope.Unrestricted {
			return nil
		}
		addPredicate(stmt, clause.Or(
			clause.IN{
				Column: clause.Column{Table: clause.CurrentTable, Name: "approval_status"},
				Values: []interface{}{string(catalog.ApprovalApproved), string(catalog.ApprovalAutoPass)},
			},
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: "submitted_by_org_id"},
				Value:  scope.OrgID,
			},
		))
		return nil
	case elevation.Create:
		if _, ok := stmt.Clauses["ON CONFLICT"]; ok {
			return ErrUnsafeUpsert
		}
		return eachRow(stmt, func(row reflect.Value) error {
			mp, ok := row.Addr().Interface().(*catalog.MasterProduct)
			if !ok {
				return shared.ErrAuthorizationDenied
			}
			if mp.ApprovalStatus != catalog.ApprovalPending || mp.LegacyImport || mp.ReviewedBy != nil {
				return shared.ErrAuthorizationDenied
			}
			return access.Authorize(p, access.ActionWrite, mp.AccessResource()).Err()
		})
	default:
		// status and field changes are governance transitions
		return shared.ErrAuthorizationDenied
	}
}

func checkMasterCustomer(stmt *gorm.Statement, p access.Principal, op elevation.Operation) error {
	if op != elevation.Query {
		// master customers are only written by the dedup registry
		return shared.ErrAuthorizationDenied
	}
	scope, err := access.MasterReadScope(p)
	if err != nil {
		return err
	}
	if scope.Unrestricted {
		return nil
	}
	addPredicate(stmt, clause.Expr{
		SQL:  "EXISTS (SELECT 1 FROM customer_links cl WHERE cl.master_customer_id = master_customers.id AND cl.tenant_id = ?)",
		Vars: []interface{}{scope.OrgID},
	})
	return nil
}

func checkReviewAudit(stmt *gorm.Statement, p access.Principal, op elevation.Operation) error {
	if op != elevation.Query {
		return shared.ErrAuthorizationDenied
	}
	scope, err := access.MasterReadScope(p)
	if err != nil {
		return err
	}
	if scope.Unrestricted {
		return nil
	}
	addPredicate(stmt, clause.Expr{
		SQL:  "EXISTS (SELECT 1 FROM master_products mp WHERE mp.id = review_audit_records.master_product_id AND mp.submitted_by_org_id = ?)",
		Vars: []interface{}{scope.OrgID},
	})
	return nil
}

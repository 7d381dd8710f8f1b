package persistence

import (
	"errors"
	"slices"
	"strings"

	"github.com/bizgrid/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps gorm errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// sortColumns is the allowlist a list endpoint may order by. Anything else sorts by
// the first column, newest first.
type sortColumns []string

var (
	orgProductSort    = sortColumns{"created_at", "updated_at", "name", "sku", "selling_price", "status"}
	masterProductSort = sortColumns{"created_at", "updated_at", "name", "sku", "approval_status"}
	invoiceSort       = sortColumns{"created_at", "updated_at", "number", "total", "status", "finalized_at"}
	customerLinkSort  = sortColumns{"created_at", "alias"}
	stockLedgerSort   = sortColumns{"created_at", "quantity"}
)

// orderBy resolves the requested ordering to a quoted column. Direction is
// ascending only when asked for explicitly.
func (s sortColumns) orderBy(filter shared.Filter) clause.OrderByColumn {
	column := strings.TrimSpace(filter.OrderBy)
	if !slices.Contains(s, column) {
		column = s[0]
	}
	asc := strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc")
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: !asc}
}

// paginate applies the ordering and the page window of filter
func paginate(query *gorm.DB, filter shared.Filter, columns sortColumns) *gorm.DB {
	return query.
		Order(columns.orderBy(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

// likePattern builds a case-insensitive contains pattern for LOWER(col) LIKE ?
func likePattern(search string) string {
	search = strings.ToLower(strings.TrimSpace(search))
	search = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(search)
	return "%" + search + "%"
}

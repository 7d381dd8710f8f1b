package persistence

import (
	"testing"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestSortColumns_OrderBy(t *testing.T) {
	tests := []struct {
		name   string
		filter shared.Filter
		column string
		desc   bool
	}{
		{name: "defaults to newest first", filter: shared.Filter{}, column: "created_at", desc: true},
		{name: "allowed column ascending", filter: shared.Filter{OrderBy: " sku ", OrderDir: "ASC"}, column: "sku", desc: false},
		{name: "unknown direction is descending", filter: shared.Filter{OrderBy: "name", OrderDir: "sideways"}, column: "name", desc: true},
		{name: "tenant column is not sortable", filter: shared.Filter{OrderBy: "tenant_id", OrderDir: "asc"}, column: "created_at", desc: false},
		{name: "injection falls back", filter: shared.Filter{OrderBy: "name; DELETE FROM org_products"}, column: "created_at", desc: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orgProductSort.orderBy(tt.filter)
			assert.Equal(t, clause.Column{Name: tt.column}, got.Column)
			assert.Equal(t, tt.desc, got.Desc)
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%widget%", likePattern("  Widget "))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(errRecordNotFound()), shared.ErrNotFound)
	assert.ErrorIs(t, translate(errDuplicated()), shared.ErrAlreadyExists)
	assert.Equal(t, assert.AnError, translate(assert.AnError))
}

package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter carries list paging, ordering and a free-text search. OrderBy is only a
// request; repositories check it against their own column allowlist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Offset returns the row offset of the requested page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size clamped to [1, 100]
func (f Filter) Limit() int {
	switch {
	case f.PageSize <= 0:
		return defaultPageSize
	case f.PageSize > maxPageSize:
		return maxPageSize
	default:
		return f.PageSize
	}
}

// Paginated is one page of a list plus the total row count
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items read with the given page and size
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	size := Filter{PageSize: pageSize}.Limit()
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}
}

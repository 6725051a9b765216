package types

// Pagination bounds shared by all list queries.
const (
	DefaultPage     = 1
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// ListParams are the common parameters of every paginated list query.
// Zero values are normalized to documented defaults by Normalize.
type ListParams struct {
	Page      int
	PageSize  int
	Sort      string
	Order     SortOrder
	Search    string
	DateRange DateRange
	Status    string
}

// Normalize clamps page and page size into their valid ranges and fills in
// defaults: page >= 1 (default 1), page size 1..100 (default 100), order
// defaulting to descending, date range defaulting to "all".
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Order != SortAsc {
		p.Order = SortDesc
	}
	if p.DateRange == "" {
		p.DateRange = DateRangeAll
	}
	return p
}

// Offset returns the row offset for the normalized page/page size.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is a single page of a list query along with the metadata needed to
// render pagination controls. Total is the full matching row count under the
// same filter predicate, not the page length.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPage assembles a Page, deriving TotalPages = ceil(total / pageSize).
func NewPage[T any](data []T, total, page, pageSize int) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

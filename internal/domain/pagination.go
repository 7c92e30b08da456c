package domain

// Page size applied when a caller passes a zero value.
const defaultPageSize = 20

// PaginationParams selects one page of a list query. Page numbering starts
// at 1.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Limit returns the LIMIT value for the query, falling back to the default
// page size when unset.
func (p PaginationParams) Limit() int {
	if p.PageSize < 1 {
		return defaultPageSize
	}
	return p.PageSize
}

// Offset returns the OFFSET value for the query.
func (p PaginationParams) Offset() int {
	if p.Page < 2 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

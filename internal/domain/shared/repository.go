package shared

// Filter carries 1-based paging for list queries
type Filter struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size, clamped to a sane default
func (f Filter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

package common

import "strings"

// Pagination normalized list options
type Pagination struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize clamps pagination inputs and validates the sort column against
// the allowed set; unknown columns fall back to created_at.
func (p *Pagination) Normalize(sortable ...string) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}

	allowed := false
	for _, col := range sortable {
		if p.SortBy == col {
			allowed = true
			break
		}
	}
	if !allowed {
		p.SortBy = "created_at"
	}

	if !strings.EqualFold(p.SortOrder, "asc") {
		p.SortOrder = "desc"
	}
}

// Offset returns the row offset for the current page
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderClause returns the SQL ORDER BY fragment
func (p *Pagination) OrderClause() string {
	return p.SortBy + " " + p.SortOrder
}

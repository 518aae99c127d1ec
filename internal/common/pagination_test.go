package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	p := &Pagination{Page: 0, Limit: 500, SortBy: "price; DROP TABLE tours", SortOrder: "ASCENDING"}
	p.Normalize("price", "created_at")

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, "created_at", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestPaginationOffset(t *testing.T) {
	p := &Pagination{Page: 3, Limit: 20}
	p.Normalize()

	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, "created_at desc", p.OrderClause())
}

func TestPaginationAllowedSort(t *testing.T) {
	p := &Pagination{Page: 1, Limit: 10, SortBy: "price", SortOrder: "asc"}
	p.Normalize("price", "created_at")

	assert.Equal(t, "price asc", p.OrderClause())
}

package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersFromQueryDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/products", nil)
	filters := FiltersFromQuery(req)

	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 20, filters.Limit)
	assert.Empty(t, filters.Search)
	assert.Nil(t, filters.IsActive)
	assert.Nil(t, filters.CategoryID)
	assert.Equal(t, 0, filters.Offset())
}

func TestFiltersFromQueryParsesAll(t *testing.T) {
	req := httptest.NewRequest("GET", "/products?page=3&limit=10&search=milk&sort=price&dir=desc&category_id=7&is_active=true", nil)
	filters := FiltersFromQuery(req)

	assert.Equal(t, 3, filters.Page)
	assert.Equal(t, 10, filters.Limit)
	assert.Equal(t, "milk", filters.Search)
	assert.Equal(t, "price", filters.SortBy)
	assert.Equal(t, "desc", filters.SortDir)
	require.NotNil(t, filters.CategoryID)
	assert.Equal(t, int64(7), *filters.CategoryID)
	require.NotNil(t, filters.IsActive)
	assert.True(t, *filters.IsActive)
	assert.Equal(t, 20, filters.Offset())
}

func TestFiltersFromQueryClampsLimits(t *testing.T) {
	req := httptest.NewRequest("GET", "/products?page=-2&limit=5000", nil)
	filters := FiltersFromQuery(req)

	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 100, filters.Limit)

	req = httptest.NewRequest("GET", "/products?limit=0", nil)
	assert.Equal(t, 20, FiltersFromQuery(req).Limit)

	req = httptest.NewRequest("GET", "/products?category_id=abc&is_active=banana", nil)
	filters = FiltersFromQuery(req)
	assert.Nil(t, filters.CategoryID)
	require.NotNil(t, filters.IsActive)
	assert.False(t, *filters.IsActive)
}

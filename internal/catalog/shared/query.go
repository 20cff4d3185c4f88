package shared

import (
	"net/http"
	"strconv"
)

// FiltersFromQuery parses the standard list parameters from a request.
func FiltersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	filters := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}

	if q.Get("category_id") != "" {
		if id, err := strconv.ParseInt(q.Get("category_id"), 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	if q.Get("is_active") != "" {
		isActive := q.Get("is_active") == "true"
		filters.IsActive = &isActive
	}
	return filters
}

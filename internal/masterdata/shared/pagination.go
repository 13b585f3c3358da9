package shared

import (
	"net/url"
	"strconv"
	"strings"

	internalShared "github.com/newhope/newhope-admin/internal/shared"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page   int
	Search string
}

// FiltersFromQuery reads page and search parameters.
func FiltersFromQuery(q url.Values) ListFilters {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	return ListFilters{Page: page, Search: strings.TrimSpace(q.Get("search"))}
}

// Matches reports whether any field contains the search text, ignoring case.
// An empty search matches everything.
func (f ListFilters) Matches(fields ...string) bool {
	needle := strings.ToLower(f.Search)
	if needle == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Pagination sizes the page window for total rows.
func (f ListFilters) Pagination(total int) internalShared.Pagination {
	return internalShared.NewPagination(f.Page, 0, total)
}

// Query encodes the filters that must survive pagination links.
func (f ListFilters) Query() string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v.Encode()
}

package shared

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is used by list screens when no limit is requested.
const DefaultPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PaginationFromQuery reads page and limit query parameters.
func PaginationFromQuery(q url.Values, total int) Pagination {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return NewPagination(page, limit, total)
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Prev returns the previous page number.
func (p Pagination) Prev() int { return p.Page - 1 }

// Next returns the next page number.
func (p Pagination) Next() int { return p.Page + 1 }

// Paginate returns the slice window for the current page.
func Paginate[T any](items []T, p Pagination) []T {
	start := (p.Page - 1) * p.PerPage
	if start >= len(items) {
		return nil
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

package helpers

import (
	"net/http"
	"strconv"

	"gatherly/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// queryInt reads an integer query parameter, returning fallback when the
// parameter is absent, unparsable, or below min.
func queryInt(r *http.Request, key string, fallback, min int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < min {
		return fallback
	}
	return v
}

// ParsePagination reads page and page_size from the query string and clamps
// them to valid ranges. Bad input falls back to the defaults rather than
// failing the request.
func ParsePagination(r *http.Request) domain.PaginationParams {
	p := domain.PaginationParams{
		Page:     queryInt(r, "page", DefaultPage, 1),
		PageSize: queryInt(r, "page_size", DefaultPageSize, 1),
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// PaginationMeta is the paging metadata attached to list responses.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta for a list response. TotalPages is
// the ceiling of total over pageSize.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, 20},
		{"explicit values", "?page=3&page_size=50", 3, 50},
		{"size clamped to max", "?page_size=5000", 1, 100},
		{"zero and negative fall back", "?page=0&page_size=-5", 1, 20},
		{"garbage falls back", "?page=abc&page_size=xyz", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "http://test/events"+tt.query, nil)
			p := ParsePagination(r)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		name           string
		page, size     int
		total          int
		wantTotalPages int
	}{
		{"exact fit", 1, 20, 40, 2},
		{"partial last page", 1, 20, 41, 3},
		{"empty result", 1, 20, 0, 0},
		{"zero page size", 1, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPaginationMeta(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.wantTotalPages, m.TotalPages)
			assert.Equal(t, tt.total, m.Total)
		})
	}
}

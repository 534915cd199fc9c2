package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         Pagination
		wantOffset int
		wantLimit  int
		wantPage   int
	}{
		{"defaults", Pagination{}, 0, DefaultPageSize, 1},
		{"negative page", Pagination{Page: -3, Limit: 5}, 0, 5, 1},
		{"third page", Pagination{Page: 3, Limit: 10}, 20, 10, 3},
		{"limit capped", Pagination{Page: 2, Limit: 1000}, MaxPageSize, MaxPageSize, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			offset, limit := p.Normalize()
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantPage, p.Page)

			res := NewPageResult([]int{}, 7, p)
			assert.Equal(t, p.Page, res.Page)
			assert.Equal(t, limit, res.Limit)
			assert.EqualValues(t, 7, res.Total)
		})
	}
}

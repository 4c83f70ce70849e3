package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name       string
		page, size int
		want       []int
	}{
		{"first page", 1, 3, []int{0, 1, 2}},
		{"second page", 2, 3, []int{3, 4, 5}},
		{"partial last page", 4, 3, []int{9}},
		{"past the end", 5, 3, []int{}},
		{"page zero", 0, 3, []int{}},
		{"whole set", 1, 20, items},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(items, tt.page, tt.size))
		})
	}
}

func TestSlice_Nil(t *testing.T) {
	assert.Empty(t, Slice[string](nil, 1, 10))
}

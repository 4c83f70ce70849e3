// Package paging slices result sets into 1-based pages.
package paging

// Slice returns items[(page-1)*size : page*size] clamped to the slice bounds.
// Pages past the end yield an empty slice.
func Slice[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	end := page * size
	if start < 0 {
		start = 0
	}
	if end > len(items) {
		end = len(items)
	}
	if start >= end {
		return items[:0]
	}
	return items[start:end]
}

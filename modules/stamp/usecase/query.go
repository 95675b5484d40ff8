package usecase

import (
	"cmp"
	"slices"
)

const (
	DefaultPageLimit     = 50
	DefaultActivityLimit = 20
)

// Page is a window over a full, timestamp-sorted sequence.
type Page[T any] struct {
	Total  int
	Limit  int
	Offset int
	Data   []T
}

// sortByTimestampDesc sorts items newest first. Ties keep append order.
func sortByTimestampDesc[T any](items []T, timestamp func(T) int64) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(timestamp(b), timestamp(a))
	})
}

// paginate returns the window [offset, offset+limit) of items, clamped to its bounds.
func paginate[T any](items []T, limit, offset int) Page[T] {
	page := Page[T]{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
		Data:   []T{},
	}
	if limit <= 0 || offset >= len(items) {
		return page
	}
	// offset+limit overflows for limits near math.MaxInt
	end := offset + min(limit, len(items)-offset)
	page.Data = items[offset:end]
	return page
}

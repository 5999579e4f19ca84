package domain

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// PageQuery is an offset-based page request. Pages start at 1.
type PageQuery struct {
	Page int
	Size int
}

// Normalize validates the page number and clamps the size into [1, maxSize].
func (q PageQuery) Normalize(maxSize int) (PageQuery, error) {
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 1 {
		return q, NewValidationError("page", "must be greater than or equal to 1")
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	// Past this the offset overflows; every such page is empty anyway.
	if limit := math.MaxInt / q.Size; q.Page > limit {
		q.Page = limit
	}
	return q, nil
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Size
}

// ActiveQuery filters the public feed of open requests.
type ActiveQuery struct {
	PageQuery
	ViewerUserID *int64
}

type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int64
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

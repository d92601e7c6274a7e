// Package pagination provides zero-based page requests and the page container returned by searches.
package pagination

import (
	"fmt"
	"math"
)

const (
	// MaxSize requests every matching element in a single page.
	MaxSize = math.MaxInt32

	// DefaultSize replaces a missing page size.
	DefaultSize = 20
	// DefaultMaxSize caps page sizes unless WithMaxPageSize says otherwise.
	DefaultMaxSize = 100
)

// Option adjusts Normalize.
type Option func(maxSize *int)

// WithMaxPageSize overrides the cap applied by Normalize. MaxSize is never capped.
func WithMaxPageSize(maxSize int) Option {
	return func(m *int) { *m = maxSize }
}

// Pageable selects one page of an ordered result. PageNumber is zero-based.
type Pageable struct {
	PageNumber int `json:"page_number" query:"page_number" validate:"gte=0"`
	PageSize   int `json:"page_size"   query:"page_size"   validate:"gte=0"`
}

// Of is a shorthand for Pageable{PageNumber: number, PageSize: size}.
func Of(number, size int) Pageable {
	return Pageable{PageNumber: number, PageSize: size}
}

// All returns the pageable that selects the whole result as page 0.
func All() Pageable {
	return Pageable{PageSize: MaxSize}
}

// Normalize applies defaults and constraints.
// MaxSize is kept as is, other sizes are capped by the configured maximum.
func (p *Pageable) Normalize(opts ...Option) {
	maxSize := DefaultMaxSize
	for _, opt := range opts {
		opt(&maxSize)
	}

	p.PageNumber = max(p.PageNumber, 0)
	if p.PageSize <= 0 {
		p.PageSize = DefaultSize
	}
	if p.PageSize != MaxSize && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
}

// Unpaged reports whether the pageable selects everything.
func (p Pageable) Unpaged() bool {
	return p.PageSize == MaxSize
}

// Offset returns the offset value. A page too far to address saturates to
// math.MaxInt, which lies past the end of any result.
func (p Pageable) Offset() int {
	if p.Unpaged() || p.PageNumber <= 0 || p.PageSize <= 0 {
		return 0
	}
	if p.PageNumber > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return p.PageNumber * p.PageSize
}

// Limit returns the limit value.
func (p Pageable) Limit() int {
	return max(p.PageSize, 0)
}

func (p Pageable) String() string {
	if p.Unpaged() {
		return "page=0 size=all"
	}
	return fmt.Sprintf("page=%d size=%d", p.PageNumber, p.PageSize)
}

// Page is one page of an ordered search result.
// TotalElements counts every match regardless of paging.
type Page[T any] struct {
	Content       []T `json:"content"`
	PageNumber    int `json:"page_number"`
	PageSize      int `json:"page_size"`
	PageElements  int `json:"page_elements"`
	TotalElements int `json:"total_elements"`
}

// NewPage creates a page from its content and the total match count.
func NewPage[T any](content []T, p Pageable, total int) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		PageElements:  len(content),
		TotalElements: total,
	}
}

// Slice cuts the page selected by p out of an already ordered slice.
func Slice[T any](items []T, p Pageable) Page[T] {
	start := min(p.Offset(), len(items))
	end := len(items)
	if !p.Unpaged() {
		end = start + min(p.Limit(), len(items)-start)
	}
	content := make([]T, end-start)
	copy(content, items[start:end])
	return NewPage(content, p, len(items))
}

// PageCount returns the number of pages needed to hold TotalElements.
func (pg Page[T]) PageCount() int {
	if pg.PageSize <= 0 || pg.TotalElements == 0 {
		return 0
	}
	if pg.PageSize == MaxSize {
		return 1
	}
	return (pg.TotalElements + pg.PageSize - 1) / pg.PageSize
}

// HasNext reports whether a page follows this one.
func (pg Page[T]) HasNext() bool {
	return pg.PageNumber+1 < pg.PageCount()
}

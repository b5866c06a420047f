package query

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when a caller passes a non-positive size.
	DefaultPageSize = 25
	// maxPage keeps offsets far from integer overflow.
	maxPage = 1_000_000
)

// Page is a 1-based page of fixed size.
type Page struct {
	Number int
	Size   int
}

// NewPage parses a page request parameter. Missing, malformed and
// non-positive values select the first page.
func NewPage(raw string, size int) Page {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 1
	}
	return PageOf(n, size)
}

// PageOf clamps n and size into a valid Page.
func PageOf(n, size int) Page {
	if n < 1 {
		n = 1
	}
	if n > maxPage {
		n = maxPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return Page{Number: n, Size: size}
}

// Offset is the number of rows before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total / size).
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	size := int64(p.Size)
	return int((total + size - 1) / size)
}

// Paginate applies LIMIT and OFFSET to db.
func (p Page) Paginate(db *gorm.DB) *gorm.DB {
	return db.Limit(p.Size).Offset(p.Offset())
}

// Result is one page of a filtered list plus the total match count.
type Result[T any] struct {
	Items []T
	Total int64
	Page  Page
}

func (r Result[T]) TotalPages() int {
	return r.Page.TotalPages(r.Total)
}

func (r Result[T]) HasPrev() bool {
	return r.Page.Number > 1
}

func (r Result[T]) HasNext() bool {
	return r.Page.Number < r.TotalPages()
}

func (r Result[T]) PrevPage() int {
	return r.Page.Number - 1
}

func (r Result[T]) NextPage() int {
	return r.Page.Number + 1
}

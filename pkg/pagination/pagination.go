package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CursorParams holds the raw keyset-pagination parameters of a scoped search
// request: page[size], page[after], page[before].
type CursorParams struct {
	Size   int
	After  string
	Before string
}

// CursorFromContext extracts cursor pagination parameters from the request.
// The page size is clamped to [1, MaxPageSize] with DefaultPageSize as the
// fallback.
func CursorFromContext(c echo.Context) CursorParams {
	size, _ := strconv.Atoi(c.QueryParam("page[size]"))
	return CursorParams{
		Size:   ClampPageSize(size),
		After:  c.QueryParam("page[after]"),
		Before: c.QueryParam("page[before]"),
	}
}

// Params holds page-number pagination parameters used by the global search
// endpoint, which pages an immutable in-memory snapshot.
type Params struct {
	Page     int
	PageSize int
}

// FromContext extracts page-number parameters from the request.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return Params{Page: page, PageSize: ClampPageSize(size)}
}

// Offset returns the slice offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ClampPageSize bounds a requested page size.
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Page is the cursor-pagination metadata returned with a scoped search page.
type Page struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
}

// Meta wraps page metadata in the response envelope.
type Meta struct {
	Page Page `json:"page"`
}

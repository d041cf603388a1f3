// Package query holds the filter, ordering and pagination stages shared by
// every listing endpoint and every storage backend.
package query

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// PageRequest is a normalized 1-based page number and page size.
type PageRequest struct {
	Number int
	Size   int
}

// NewPageRequest clamps page to >= 1 and size to 1..MaxPageSize.
// A non-positive size falls back to DefaultPageSize. Page is capped so that
// Offset()+Limit() cannot overflow int.
func NewPageRequest(page, size int) PageRequest {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}
	return PageRequest{Number: page, Size: size}
}

// ParsePageRequest normalizes raw query-string values. Non-integers count as absent.
func ParsePageRequest(page, size string) PageRequest {
	p, _ := strconv.Atoi(page)
	s, _ := strconv.Atoi(size)
	return NewPageRequest(p, s)
}

// Offset and Limit clamp first, so the zero PageRequest is the first default page.
func (r PageRequest) Offset() int {
	n := NewPageRequest(r.Number, r.Size)
	return (n.Number - 1) * n.Size
}

func (r PageRequest) Limit() int {
	return NewPageRequest(r.Number, r.Size).Size
}

// Page is one slice of a listing plus the total number of matching items.
type Page[T any] struct {
	Items   []T
	Count   int64
	Request PageRequest
}

func NewPage[T any](items []T, count int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Count: count, Request: req}
}

// EmptyPage is the result of a filter that cannot match anything.
func EmptyPage[T any](req PageRequest) Page[T] {
	return NewPage[T](nil, 0, req)
}

func (p Page[T]) HasNext() bool {
	return int64(p.Request.Offset()+p.Request.Limit()) < p.Count
}

func (p Page[T]) HasPrevious() bool {
	return p.Request.Number > 1
}

// Map converts the items of a page, keeping its counts.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = f(item)
	}
	return Page[U]{Items: out, Count: p.Count, Request: p.Request}
}

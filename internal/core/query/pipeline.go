package query

import "slices"

// Predicate keeps an item when it returns true.
type Predicate[T any] func(T) bool

// Comparator orders two items the way cmp.Compare does.
type Comparator[T any] func(a, b T) int

// Sorter maps allow-listed ordering fields to comparators.
type Sorter[T any] struct {
	Fields   map[string]Comparator[T]
	Tiebreak Comparator[T]
}

// Filter returns the items matching every predicate. The input is not modified.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range preds {
			if p != nil && !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Sort orders items in place by ord, then by the tiebreak comparator.
func Sort[T any](items []T, ord Ordering, s Sorter[T]) {
	slices.SortStableFunc(items, func(a, b T) int {
		for _, f := range ord {
			cmp, ok := s.Fields[f.Field]
			if !ok {
				continue
			}
			c := cmp(a, b)
			if f.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if s.Tiebreak != nil {
			return s.Tiebreak(a, b)
		}
		return 0
	})
}

// Paginate cuts one page out of an already filtered and sorted slice.
func Paginate[T any](items []T, req PageRequest) Page[T] {
	total := int64(len(items))
	start := min(req.Offset(), len(items))
	end := min(start+req.Limit(), len(items))
	return NewPage(slices.Clone(items[start:end]), total, req)
}

// Run is Filter, Sort and Paginate in sequence.
func Run[T any](items []T, preds []Predicate[T], ord Ordering, s Sorter[T], req PageRequest) Page[T] {
	matched := Filter(items, preds...)
	Sort(matched, ord, s)
	return Paginate(matched, req)
}

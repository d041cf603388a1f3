package query

import (
	"slices"
	"strings"
)

// OrderField is one sort key. Desc reverses its direction.
type OrderField struct {
	Field string
	Desc  bool
}

// Ordering is a list of sort keys applied left to right.
type Ordering []OrderField

// ParseOrdering reads a comma-separated order_by value such as "-year,title".
// Fields outside allowed are dropped; when nothing survives, fallback is used.
func ParseOrdering(raw string, allowed []string, fallback Ordering) Ordering {
	var out Ordering
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := OrderField{Field: part}
		if strings.HasPrefix(part, "-") {
			f = OrderField{Field: part[1:], Desc: true}
		}
		if !slices.Contains(allowed, f.Field) {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// Asc is a single ascending key, the usual fallback.
func Asc(field string) Ordering {
	return Ordering{{Field: field}}
}

func (o Ordering) String() string {
	parts := make([]string, 0, len(o))
	for _, f := range o {
		if f.Desc {
			parts = append(parts, "-"+f.Field)
			continue
		}
		parts = append(parts, f.Field)
	}
	return strings.Join(parts, ",")
}

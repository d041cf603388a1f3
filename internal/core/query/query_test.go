package query

import (
	"cmp"
	"math"
	"strings"
	"testing"
)

func TestParsePageRequest(t *testing.T) {
	cases := []struct {
		page, size string
		want       PageRequest
	}{
		{"", "", PageRequest{1, 10}},
		{"2", "5", PageRequest{2, 5}},
		{"0", "0", PageRequest{1, 10}},
		{"-3", "-1", PageRequest{1, 10}},
		{"abc", "xyz", PageRequest{1, 10}},
		{"1", "5000", PageRequest{1, 1000}},
		{"4", "1000", PageRequest{4, 1000}},
		{"9223372036854775807", "", PageRequest{math.MaxInt / 10, 10}},
		{"99999999999999999999", "1000", PageRequest{math.MaxInt / 1000, 1000}},
	}
	for _, tc := range cases {
		if got := ParsePageRequest(tc.page, tc.size); got != tc.want {
			t.Errorf("ParsePageRequest(%q, %q) = %+v, want %+v", tc.page, tc.size, got, tc.want)
		}
	}
}

func TestParseOrdering(t *testing.T) {
	allowed := []string{"title", "year"}
	fallback := Asc("title")

	cases := map[string]string{
		"":              "title",
		"year":          "year",
		"-year":         "-year",
		"-year,title":   "-year,title",
		"bogus":         "title",
		"bogus,-year":   "-year",
		" year , title": "year,title",
	}
	for raw, want := range cases {
		if got := ParseOrdering(raw, allowed, fallback).String(); got != want {
			t.Errorf("ParseOrdering(%q) = %q, want %q", raw, got, want)
		}
	}
}

type item struct {
	id    string
	title string
	year  int
}

var itemSorter = Sorter[item]{
	Fields: map[string]Comparator[item]{
		"title": func(a, b item) int { return strings.Compare(a.title, b.title) },
		"year":  func(a, b item) int { return cmp.Compare(a.year, b.year) },
	},
	Tiebreak: func(a, b item) int { return strings.Compare(a.id, b.id) },
}

func sampleItems() []item {
	return []item{
		{"c", "Two Towers", 2002},
		{"a", "Fellowship", 2001},
		{"d", "Return", 2003},
		{"b", "Hobbit", 2012},
		{"e", "Remake", 2001},
	}
}

func TestRun_FilterSortPaginate(t *testing.T) {
	preds := []Predicate[item]{func(i item) bool { return i.year < 2010 }}
	page := Run(sampleItems(), preds, ParseOrdering("-year", []string{"year"}, nil), itemSorter, NewPageRequest(1, 3))

	if page.Count != 4 {
		t.Fatalf("expected count 4, got %d", page.Count)
	}
	var ids []string
	for _, i := range page.Items {
		ids = append(ids, i.id)
	}
	if got := strings.Join(ids, ","); got != "d,c,a" {
		t.Fatalf("unexpected order %s", got)
	}
	if !page.HasNext() || page.HasPrevious() {
		t.Fatalf("expected next and no previous on first page")
	}
}

func TestPaginate_BeyondLastPage(t *testing.T) {
	page := Paginate(sampleItems(), NewPageRequest(9, 2))

	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(page.Items))
	}
	if page.Count != 5 {
		t.Fatalf("count should still be 5, got %d", page.Count)
	}
	if page.HasNext() {
		t.Fatal("no next page beyond the end")
	}
}

func TestPaginate_HugePageNumber(t *testing.T) {
	for _, raw := range []string{"1000000000000000000", "9223372036854775807"} {
		req := ParsePageRequest(raw, "")
		if req.Offset() < 0 || req.Offset()+req.Limit() < 0 {
			t.Fatalf("page %s: offset overflowed: %d", raw, req.Offset())
		}

		page := Paginate(sampleItems(), req)
		if len(page.Items) != 0 || page.Count != 5 {
			t.Fatalf("page %s: expected empty page with count 5, got %d items count %d", raw, len(page.Items), page.Count)
		}
		if page.HasNext() || !page.HasPrevious() {
			t.Fatalf("page %s: expected only a previous link", raw)
		}
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := sampleItems()
	_ = Filter(in, func(i item) bool { return i.year == 2001 })
	if len(in) != 5 || in[0].id != "c" {
		t.Fatal("input slice was modified")
	}
}

func TestMap(t *testing.T) {
	page := Map(Paginate(sampleItems(), NewPageRequest(1, 2)), func(i item) string { return i.title })
	if len(page.Items) != 2 || page.Items[0] != "Two Towers" || page.Count != 5 {
		t.Fatalf("unexpected mapped page %+v", page)
	}
}

package handler

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/query"
)

// pageResponse is the listing envelope shared by every collection endpoint.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPageResponse[T, U any](c echo.Context, p query.Page[T], shape func(T) U) pageResponse[U] {
	resp := pageResponse[U]{Count: p.Count, Results: query.Map(p, shape).Items}
	current := query.NewPageRequest(p.Request.Number, p.Request.Size).Number
	if p.HasNext() {
		next := pageLink(c, current+1)
		resp.Next = &next
	}
	if p.HasPrevious() {
		prev := pageLink(c, current-1)
		resp.Previous = &prev
	}
	return resp
}

// pageLink rebuilds the current URL with another page number. The first page
// is linked without a page parameter.
func pageLink(c echo.Context, page int) string {
	q := c.Request().URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{
		Scheme:   c.Scheme(),
		Host:     c.Request().Host,
		Path:     c.Request().URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// absoluteURL resolves path against the request's scheme and host.
func absoluteURL(c echo.Context, path string) string {
	u := url.URL{Scheme: c.Scheme(), Host: c.Request().Host, Path: path}
	return u.String()
}

// pageRequest reads page and page_size from the query string.
func pageRequest(c echo.Context) query.PageRequest {
	return query.ParsePageRequest(c.QueryParam("page"), c.QueryParam("page_size"))
}

// optionalParam distinguishes an absent query parameter from an empty one.
func optionalParam(c echo.Context, name string) *string {
	values, ok := c.QueryParams()[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/policy"
)

func TestAuthorize(t *testing.T) {
	regular := &domain.Actor{UUID: "u-1", Role: domain.RoleRegular}
	admin := &domain.Actor{UUID: "u-2", Role: domain.RoleAdmin}

	cases := []struct {
		name  string
		res   policy.Resource
		act   policy.Action
		actor *domain.Actor
		want  error
	}{
		{"anonymous list", policy.Movie, policy.List, nil, domain.ErrUnauthenticated},
		{"regular list", policy.Movie, policy.List, regular, nil},
		{"regular create movie", policy.Movie, policy.Create, regular, domain.ErrPermissionDenied},
		{"admin create movie", policy.Movie, policy.Create, admin, nil},
		{"regular delete rental", policy.Rental, policy.Destroy, regular, domain.ErrPermissionDenied},
		{"regular users", policy.User, policy.List, regular, domain.ErrPermissionDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.actor != nil {
				c.Set(actorKey, tc.actor)
			}

			called := false
			err := Authorize(tc.res, tc.act)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)

			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if called != (tc.want == nil) {
				t.Fatalf("next called = %v", called)
			}
		})
	}
}

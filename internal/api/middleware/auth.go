package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

const (
	actorKey = "actor"

	// AccessCookie and RefreshCookie hold the tokens issued on login.
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Authenticate resolves the request credential to an actor and stores it on
// the context. Requests without a credential pass through as anonymous;
// a credential that does not resolve fails the request.
func Authenticate(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := resolver.Resolve(c.Request().Context(), credential(c))
			if err != nil {
				return err
			}
			if actor != nil {
				c.Set(actorKey, actor)
			}
			return next(c)
		}
	}
}

// Actor returns the authenticated actor, or nil for anonymous requests.
func Actor(c echo.Context) *domain.Actor {
	a, _ := c.Get(actorKey).(*domain.Actor)
	return a
}

// credential prefers an Authorization bearer token over the access cookie.
func credential(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(AccessCookie); err == nil {
		return cookie.Value
	}
	return ""
}

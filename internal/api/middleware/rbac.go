package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/policy"
)

// Authorize gates a route with the collection-level policy for res and act.
// Object-level checks happen in the services after the scoped lookup.
func Authorize(res policy.Resource, act policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.CheckCollection(res, act, Actor(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

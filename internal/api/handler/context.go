package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/api/middleware"
	"github.com/moviestore/rental-api/internal/core/domain"
)

// currentActor returns the authenticated actor. Routes are gated by the
// Authorize middleware, so a missing actor only happens on misconfigured routes.
func currentActor(c echo.Context) (*domain.Actor, error) {
	actor := middleware.Actor(c)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return actor, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

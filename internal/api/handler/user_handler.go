package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users/.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Substring of email, first or last name"
// @Param        order_by   query     string  false  "Comma-separated fields, '-' for descending (email, date_joined)"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size (max 1000)"
// @Success      200        {object}  pageResponse[userResponse]
// @Failure      403        {object}  errorResponse
// @Router       /users/ [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := h.users.List(c.Request().Context(), ports.UserQuery{
		Search:  c.QueryParam("search"),
		OrderBy: c.QueryParam("order_by"),
		Page:    pageRequest(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, shaper(c, toUserResponse)))
}

// Get handles GET /users/:uuid/.
//
// @Summary      Retrieve a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string  true  "User uuid"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{uuid}/ [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.users.Get(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(c, u))
}

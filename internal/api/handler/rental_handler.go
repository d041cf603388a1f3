package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/api/metrics"
	"github.com/moviestore/rental-api/internal/core/ports"
)

type RentalHandler struct {
	rentals ports.RentalService
}

func NewRentalHandler(rentals ports.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

// List handles GET /rentals/.
//
// @Summary      List rentals
// @Description  Regular users only see their own rentals; the user filter is honoured for admins only.
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        user       query     string  false  "User uuid (admins only)"
// @Param        movie      query     string  false  "Movie uuid"
// @Param        status     query     string  false  "active or returned"
// @Param        search     query     string  false  "Case-insensitive substring of the movie title"
// @Param        order_by   query     string  false  "Comma-separated fields, '-' for descending (movie_title, movie_year, rental_date, return_date, payment)"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size (max 1000)"
// @Success      200        {object}  pageResponse[rentalResponse]
// @Failure      401        {object}  errorResponse
// @Router       /rentals/ [get]
func (h *RentalHandler) List(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	page, err := h.rentals.List(c.Request().Context(), actor, ports.RentalQuery{
		User:    c.QueryParam("user"),
		Movie:   c.QueryParam("movie"),
		Status:  c.QueryParam("status"),
		Search:  c.QueryParam("search"),
		OrderBy: c.QueryParam("order_by"),
		Page:    pageRequest(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, shaper(c, toRentalResponse)))
}

// Get handles GET /rentals/:uuid/.
//
// @Summary      Retrieve a rental
// @Description  Rentals of other users are reported as not found.
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string  true  "Rental uuid"
// @Success      200   {object}  rentalResponse
// @Failure      404   {object}  errorResponse
// @Router       /rentals/{uuid}/ [get]
func (h *RentalHandler) Get(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	v, err := h.rentals.Get(c.Request().Context(), actor, c.Param("uuid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRentalResponse(c, *v))
}

// Create handles POST /rentals/.
//
// @Summary      Rent a movie
// @Description  The rental always belongs to the caller.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRentalRequest  true  "Movie to rent"
// @Success      201   {object}  rentalResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /rentals/ [post]
func (h *RentalHandler) Create(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req createRentalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.rentals.Create(c.Request().Context(), actor, req.Movie)
	if err != nil {
		return err
	}
	metrics.RentalsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toRentalResponse(c, *v))
}

// Return handles PATCH /rentals/:uuid/.
//
// @Summary      Return a rental
// @Description  Only {"returned": true} on an active rental is accepted; the fee is charged then.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string               true  "Rental uuid"
// @Param        body  body      returnRentalRequest  true  "Return flag"
// @Success      200   {object}  rentalResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /rentals/{uuid}/ [patch]
func (h *RentalHandler) Return(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req returnRentalRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	v, err := h.rentals.Return(c.Request().Context(), actor, c.Param("uuid"), req.Returned)
	if err != nil {
		return err
	}
	metrics.RentalsReturnedTotal.Inc()
	if v.Rental.Payment != nil {
		metrics.RentalPayment.Observe(*v.Rental.Payment)
	}
	return c.JSON(http.StatusOK, toRentalResponse(c, *v))
}

// Delete handles DELETE /rentals/:uuid/.
//
// @Summary      Delete a rental
// @Tags         rentals
// @Security     BearerAuth
// @Param        uuid  path  string  true  "Rental uuid"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /rentals/{uuid}/ [delete]
func (h *RentalHandler) Delete(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.rentals.Delete(c.Request().Context(), actor, c.Param("uuid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/ports"
)

type MovieHandler struct {
	catalog ports.CatalogService
}

func NewMovieHandler(catalog ports.CatalogService) *MovieHandler {
	return &MovieHandler{catalog: catalog}
}

func movieQuery(c echo.Context) ports.MovieQuery {
	return ports.MovieQuery{
		Search:   c.QueryParam("search"),
		OrderBy:  c.QueryParam("order_by"),
		Year:     optionalParam(c, "year"),
		Director: optionalParam(c, "director"),
		Genre:    optionalParam(c, "genre"),
		Page:     pageRequest(c),
	}
}

// List handles GET /movies/.
//
// @Summary      List movies
// @Description  genre takes comma-separated names; a movie must carry every matched genre.
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Case-insensitive substring of the title"
// @Param        year       query     int     false  "Exact year"
// @Param        director   query     string  false  "Exact director"
// @Param        genre      query     string  false  "Comma-separated genre names"
// @Param        order_by   query     string  false  "Comma-separated fields, '-' for descending (title, year)"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size (max 1000)"
// @Success      200        {object}  pageResponse[movieResponse]
// @Failure      401        {object}  errorResponse
// @Router       /movies/ [get]
func (h *MovieHandler) List(c echo.Context) error {
	page, err := h.catalog.ListMovies(c.Request().Context(), movieQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, shaper(c, toMovieResponse)))
}

// Library handles GET /movies/library/.
//
// @Summary      List the caller's rented movies
// @Description  Movies the caller holds an active rental for. Accepts the same filters as the movie list.
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Case-insensitive substring of the title"
// @Param        order_by   query     string  false  "Comma-separated fields, '-' for descending (title, year)"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size (max 1000)"
// @Success      200        {object}  pageResponse[movieResponse]
// @Failure      401        {object}  errorResponse
// @Router       /movies/library/ [get]
func (h *MovieHandler) Library(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	page, err := h.catalog.Library(c.Request().Context(), actor, movieQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, shaper(c, toMovieResponse)))
}

// Get handles GET /movies/:uuid/.
//
// @Summary      Retrieve a movie
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string  true  "Movie uuid"
// @Success      200   {object}  movieResponse
// @Failure      404   {object}  errorResponse
// @Router       /movies/{uuid}/ [get]
func (h *MovieHandler) Get(c echo.Context) error {
	m, err := h.catalog.GetMovie(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponse(c, m))
}

// Create handles POST /movies/.
//
// @Summary      Create a movie
// @Description  Every genre name must exist; otherwise nothing is stored.
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createMovieRequest  true  "Movie"
// @Success      201   {object}  movieResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /movies/ [post]
func (h *MovieHandler) Create(c echo.Context) error {
	var req createMovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.catalog.CreateMovie(c.Request().Context(), ports.CreateMovieInput{
		Title:    req.Title,
		Year:     *req.Year,
		Summary:  req.Summary,
		Director: req.Director,
		Genres:   req.Genres,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMovieResponse(c, m))
}

// Update handles PATCH /movies/:uuid/.
//
// @Summary      Update a movie
// @Description  Only the given fields change; genres, when given, replace the whole set.
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string              true  "Movie uuid"
// @Param        body  body      updateMovieRequest  true  "Fields to change"
// @Success      200   {object}  movieResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /movies/{uuid}/ [patch]
func (h *MovieHandler) Update(c echo.Context) error {
	var req updateMovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.catalog.UpdateMovie(c.Request().Context(), c.Param("uuid"), ports.UpdateMovieInput{
		Title:    req.Title,
		Year:     req.Year,
		Summary:  req.Summary,
		Director: req.Director,
		Genres:   req.Genres,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponse(c, m))
}

// Delete handles DELETE /movies/:uuid/.
//
// @Summary      Delete a movie
// @Description  Rentals of the movie are deleted with it.
// @Tags         movies
// @Security     BearerAuth
// @Param        uuid  path  string  true  "Movie uuid"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /movies/{uuid}/ [delete]
func (h *MovieHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteMovie(c.Request().Context(), c.Param("uuid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

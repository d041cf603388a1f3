package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/ports"
)

type GenreHandler struct {
	catalog ports.CatalogService
}

func NewGenreHandler(catalog ports.CatalogService) *GenreHandler {
	return &GenreHandler{catalog: catalog}
}

// List handles GET /genres/.
//
// @Summary      List genres
// @Tags         genres
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Case-insensitive substring of the name"
// @Param        order_by   query     string  false  "Comma-separated fields, '-' for descending (name)"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size (max 1000)"
// @Success      200        {object}  pageResponse[genreResponse]
// @Failure      401        {object}  errorResponse
// @Router       /genres/ [get]
func (h *GenreHandler) List(c echo.Context) error {
	page, err := h.catalog.ListGenres(c.Request().Context(), ports.GenreQuery{
		Search:  c.QueryParam("search"),
		OrderBy: c.QueryParam("order_by"),
		Page:    pageRequest(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(c, page, shaper(c, toGenreResponse)))
}

// Get handles GET /genres/:uuid/.
//
// @Summary      Retrieve a genre
// @Tags         genres
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string  true  "Genre uuid"
// @Success      200   {object}  genreResponse
// @Failure      404   {object}  errorResponse
// @Router       /genres/{uuid}/ [get]
func (h *GenreHandler) Get(c echo.Context) error {
	g, err := h.catalog.GetGenre(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGenreResponse(c, g))
}

// Create handles POST /genres/.
//
// @Summary      Create a genre
// @Tags         genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGenreRequest  true  "Genre"
// @Success      201   {object}  genreResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /genres/ [post]
func (h *GenreHandler) Create(c echo.Context) error {
	var req createGenreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	g, err := h.catalog.CreateGenre(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toGenreResponse(c, g))
}

// Update handles PATCH /genres/:uuid/.
//
// @Summary      Rename a genre
// @Tags         genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uuid  path      string              true  "Genre uuid"
// @Param        body  body      updateGenreRequest  true  "Fields to change"
// @Success      200   {object}  genreResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /genres/{uuid}/ [patch]
func (h *GenreHandler) Update(c echo.Context) error {
	var req updateGenreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("uuid")

	if req.Name == nil {
		g, err := h.catalog.GetGenre(ctx, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toGenreResponse(c, g))
	}

	g, err := h.catalog.RenameGenre(ctx, id, *req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGenreResponse(c, g))
}

// Delete handles DELETE /genres/:uuid/.
//
// @Summary      Delete a genre
// @Description  The genre is removed from every movie that carried it.
// @Tags         genres
// @Security     BearerAuth
// @Param        uuid  path  string  true  "Genre uuid"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /genres/{uuid}/ [delete]
func (h *GenreHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteGenre(c.Request().Context(), c.Param("uuid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

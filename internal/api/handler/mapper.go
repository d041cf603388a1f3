package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

// --- Domain → HTTP response ---

func toGenreResponse(c echo.Context, g *domain.Genre) genreResponse {
	return genreResponse{
		URL:  absoluteURL(c, "/genres/"+g.UUID+"/"),
		UUID: g.UUID,
		Name: g.Name,
	}
}

func toMovieResponse(c echo.Context, m *domain.Movie) movieResponse {
	return movieResponse{
		URL:      absoluteURL(c, "/movies/"+m.UUID+"/"),
		UUID:     m.UUID,
		Title:    m.Title,
		Year:     m.Year,
		Summary:  m.Summary,
		Director: m.Director,
		Genres:   m.GenreNames(),
	}
}

func toRentalResponse(c echo.Context, v ports.RentalView) rentalResponse {
	r := v.Rental
	resp := rentalResponse{
		URL:        absoluteURL(c, "/rentals/"+r.UUID+"/"),
		UUID:       r.UUID,
		RentalDate: r.RentalDate.UTC(),
		Returned:   r.Returned,
		Payment:    r.Payment,
		Fee:        v.Fee,
	}
	if r.ReturnDate != nil {
		rd := r.ReturnDate.UTC()
		resp.ReturnDate = &rd
	}
	if r.User != nil {
		resp.User = &basicUserResponse{
			UUID:      r.User.UUID,
			Email:     r.User.Email,
			FirstName: r.User.FirstName,
			LastName:  r.User.LastName,
		}
	}
	if r.Movie != nil {
		m := toMovieResponse(c, r.Movie)
		resp.Movie = &m
	}
	return resp
}

func toUserResponse(c echo.Context, u *domain.User) userResponse {
	return userResponse{
		URL:         absoluteURL(c, "/users/"+u.UUID+"/"),
		UUID:        u.UUID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role()),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined.UTC(),
		LastLogin:   u.LastLogin,
	}
}

// shaper binds a request-aware mapper for use with newPageResponse.
func shaper[T, U any](c echo.Context, f func(echo.Context, T) U) func(T) U {
	return func(v T) U { return f(c, v) }
}

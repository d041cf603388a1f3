package ports

import (
	"context"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/query"
)

type GenreQuery struct {
	Search  string
	OrderBy string
	Page    query.PageRequest
}

// MovieQuery carries raw filter values; nil means the parameter was absent.
type MovieQuery struct {
	Search   string
	OrderBy  string
	Year     *string
	Director *string
	Genre    *string
	Page     query.PageRequest
}

type CreateMovieInput struct {
	Title    string
	Year     int
	Summary  string
	Director string
	Genres   []string
}

// UpdateMovieInput is a partial update; nil fields are left unchanged.
type UpdateMovieInput struct {
	Title    *string
	Year     *int
	Summary  *string
	Director *string
	Genres   *[]string
}

type CatalogService interface {
	ListGenres(ctx context.Context, q GenreQuery) (query.Page[*domain.Genre], error)
	GetGenre(ctx context.Context, uuid string) (*domain.Genre, error)
	CreateGenre(ctx context.Context, name string) (*domain.Genre, error)
	RenameGenre(ctx context.Context, uuid, name string) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, uuid string) error

	ListMovies(ctx context.Context, q MovieQuery) (query.Page[*domain.Movie], error)
	Library(ctx context.Context, actor *domain.Actor, q MovieQuery) (query.Page[*domain.Movie], error)
	GetMovie(ctx context.Context, uuid string) (*domain.Movie, error)
	CreateMovie(ctx context.Context, in CreateMovieInput) (*domain.Movie, error)
	UpdateMovie(ctx context.Context, uuid string, in UpdateMovieInput) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, uuid string) error
}

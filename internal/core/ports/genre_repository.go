package ports

import (
	"context"

	"github.com/moviestore/rental-api/internal/core/domain"
)

type GenreRepository interface {
	// Create returns domain.ErrDuplicateGenreName when the name is taken.
	Create(ctx context.Context, g *domain.Genre) error
	FindByUUID(ctx context.Context, uuid string) (*domain.Genre, error)
	// FindByNames returns the genres whose name equals one of names exactly.
	FindByNames(ctx context.Context, names []string) ([]*domain.Genre, error)
	// MatchNames is FindByNames with case-insensitive comparison.
	MatchNames(ctx context.Context, names []string) ([]*domain.Genre, error)
	Update(ctx context.Context, g *domain.Genre) error
	// Delete removes the genre and detaches it from every movie.
	Delete(ctx context.Context, uuid string) error
	List(ctx context.Context, filter GenreFilter) ([]*domain.Genre, int64, error)
}

package ports

import (
	"context"

	"github.com/moviestore/rental-api/internal/core/domain"
)

// MovieRepository persists movies together with their genre set.
// Genres passed in are expected to exist already.
type MovieRepository interface {
	Create(ctx context.Context, m *domain.Movie) error
	FindByUUID(ctx context.Context, uuid string) (*domain.Movie, error)
	Update(ctx context.Context, m *domain.Movie) error
	// Delete removes the movie and every rental of it.
	Delete(ctx context.Context, uuid string) error
	List(ctx context.Context, filter MovieFilter) ([]*domain.Movie, int64, error)
}

package ports

import (
	"context"
	"time"

	"github.com/moviestore/rental-api/internal/core/domain"
)

// RentalRepository persists rentals and enforces the one-active-rental rule.
// Reads populate Rental.User and Rental.Movie.
type RentalRepository interface {
	// Create returns domain.ErrAlreadyRented when the user already holds an
	// active rental of the same movie.
	Create(ctx context.Context, r *domain.Rental) error
	// FindByUUID restricts the lookup to ownerUUID's rentals when it is non-empty.
	FindByUUID(ctx context.Context, uuid, ownerUUID string) (*domain.Rental, error)
	// MarkReturned atomically moves an active rental to returned.
	// It returns domain.ErrAlreadyReturned if the rental is no longer active.
	MarkReturned(ctx context.Context, uuid string, returnDate time.Time, payment float64) error
	Delete(ctx context.Context, uuid string) error
	List(ctx context.Context, filter RentalFilter) ([]*domain.Rental, int64, error)
}

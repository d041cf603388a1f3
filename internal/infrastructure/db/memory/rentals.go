package memory

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var rentalSorter = query.Sorter[*domain.Rental]{
	Fields: map[string]query.Comparator[*domain.Rental]{
		"movie_title": func(a, b *domain.Rental) int { return strings.Compare(a.Movie.Title, b.Movie.Title) },
		"movie_year":  func(a, b *domain.Rental) int { return cmp.Compare(a.Movie.Year, b.Movie.Year) },
		"rental_date": func(a, b *domain.Rental) int { return a.RentalDate.Compare(b.RentalDate) },
		"return_date": func(a, b *domain.Rental) int {
			return compareNullable(a.ReturnDate, b.ReturnDate, func(x, y time.Time) int { return x.Compare(y) })
		},
		"payment": func(a, b *domain.Rental) int {
			return compareNullable(a.Payment, b.Payment, cmp.Compare[float64])
		},
	},
	Tiebreak: func(a, b *domain.Rental) int { return strings.Compare(a.UUID, b.UUID) },
}

// compareNullable sorts nil after every value, as Postgres does for ascending order.
func compareNullable[T any](a, b *T, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compare(*a, *b)
}

type RentalRepository struct {
	s *Store
}

// Create checks for an active rental and inserts under one write lock.
func (r *RentalRepository) Create(_ context.Context, rental *domain.Rental) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[rental.UserUUID]; !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := r.s.movies[rental.MovieUUID]; !ok {
		return domain.ErrMovieNotFound
	}
	for _, existing := range r.s.rentals {
		if existing.UserUUID == rental.UserUUID && existing.MovieUUID == rental.MovieUUID && existing.IsActive() {
			return domain.ErrAlreadyRented
		}
	}

	rental.ID = r.s.nextID()
	r.s.rentals[rental.UUID] = cloneRental(rental)
	return nil
}

func (r *RentalRepository) FindByUUID(_ context.Context, uuid, ownerUUID string) (*domain.Rental, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rental, ok := r.s.rentals[uuid]
	if !ok || (ownerUUID != "" && rental.UserUUID != ownerUUID) {
		return nil, domain.ErrRentalNotFound
	}
	return r.s.hydrateRental(rental), nil
}

// MarkReturned is a compare-and-set on the returned flag.
func (r *RentalRepository) MarkReturned(_ context.Context, uuid string, returnDate time.Time, payment float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rental, ok := r.s.rentals[uuid]
	if !ok {
		return domain.ErrRentalNotFound
	}
	if rental.Returned {
		return domain.ErrAlreadyReturned
	}
	rental.ReturnDate = &returnDate
	rental.Payment = &payment
	rental.Returned = true
	return nil
}

func (r *RentalRepository) Delete(_ context.Context, uuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rentals[uuid]; !ok {
		return domain.ErrRentalNotFound
	}
	delete(r.s.rentals, uuid)
	return nil
}

func (r *RentalRepository) List(_ context.Context, f ports.RentalFilter) ([]*domain.Rental, int64, error) {
	r.s.mu.RLock()
	all := make([]*domain.Rental, 0, len(r.s.rentals))
	for _, rental := range r.s.rentals {
		all = append(all, r.s.hydrateRental(rental))
	}
	r.s.mu.RUnlock()

	page := query.Run(all, rentalPredicates(f), f.Ordering, rentalSorter, f.Page)
	return page.Items, page.Count, nil
}

func rentalPredicates(f ports.RentalFilter) []query.Predicate[*domain.Rental] {
	var preds []query.Predicate[*domain.Rental]
	if f.OwnerUUID != "" {
		preds = append(preds, func(r *domain.Rental) bool { return r.UserUUID == f.OwnerUUID })
	}
	if f.UserUUID != "" {
		preds = append(preds, func(r *domain.Rental) bool { return r.UserUUID == f.UserUUID })
	}
	if f.MovieUUID != "" {
		preds = append(preds, func(r *domain.Rental) bool { return r.MovieUUID == f.MovieUUID })
	}
	if f.Status != "" {
		preds = append(preds, func(r *domain.Rental) bool { return r.Status() == f.Status })
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(r *domain.Rental) bool { return r.Movie != nil && containsFold(r.Movie.Title, needle) })
	}
	return preds
}

// Package memory is a process-local storage backend. It backs tests and the
// "memory" storage driver, and enforces the same uniqueness rules as the
// database backends under a single lock.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

type movieRow struct {
	movie      domain.Movie // Genres left empty; see genreUUIDs
	genreUUIDs []string
}

// Store holds every table. All repositories share its lock so cascades are atomic.
type Store struct {
	mu      sync.RWMutex
	seq     int64
	users   map[string]*domain.User
	genres  map[string]*domain.Genre
	movies  map[string]*movieRow
	rentals map[string]*domain.Rental
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		genres:  make(map[string]*domain.Genre),
		movies:  make(map[string]*movieRow),
		rentals: make(map[string]*domain.Rental),
	}
}

// Repositories returns the port bundle backed by this store.
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Users:   &UserRepository{s: s},
		Genres:  &GenreRepository{s: s},
		Movies:  &MovieRepository{s: s},
		Rentals: &RentalRepository{s: s},
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// nextID must be called with the write lock held.
func (s *Store) nextID() string {
	s.seq++
	return strconv.FormatInt(s.seq, 10)
}

// hydrateMovie must be called with at least the read lock held.
func (s *Store) hydrateMovie(row *movieRow) *domain.Movie {
	m := row.movie
	m.Genres = make([]domain.Genre, 0, len(row.genreUUIDs))
	for _, id := range row.genreUUIDs {
		if g, ok := s.genres[id]; ok {
			m.Genres = append(m.Genres, *g)
		}
	}
	return &m
}

// hydrateRental must be called with at least the read lock held.
func (s *Store) hydrateRental(r *domain.Rental) *domain.Rental {
	out := cloneRental(r)
	if u, ok := s.users[r.UserUUID]; ok {
		out.User = cloneUser(u)
	}
	if row, ok := s.movies[r.MovieUUID]; ok {
		out.Movie = s.hydrateMovie(row)
	}
	return out
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func cloneRental(r *domain.Rental) *domain.Rental {
	c := *r
	c.User, c.Movie = nil, nil
	if r.ReturnDate != nil {
		t := *r.ReturnDate
		c.ReturnDate = &t
	}
	if r.Payment != nil {
		p := *r.Payment
		c.Payment = &p
	}
	return &c
}

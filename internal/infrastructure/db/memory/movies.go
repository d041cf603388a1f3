package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var movieSorter = query.Sorter[*domain.Movie]{
	Fields: map[string]query.Comparator[*domain.Movie]{
		"title": func(a, b *domain.Movie) int { return strings.Compare(a.Title, b.Title) },
		"year":  func(a, b *domain.Movie) int { return cmp.Compare(a.Year, b.Year) },
	},
	Tiebreak: func(a, b *domain.Movie) int { return strings.Compare(a.UUID, b.UUID) },
}

type MovieRepository struct {
	s *Store
}

func (r *MovieRepository) Create(_ context.Context, m *domain.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m.ID = r.s.nextID()
	r.s.movies[m.UUID] = newMovieRow(m)
	return nil
}

func (r *MovieRepository) FindByUUID(_ context.Context, uuid string) (*domain.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.movies[uuid]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	return r.s.hydrateMovie(row), nil
}

func (r *MovieRepository) Update(_ context.Context, m *domain.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.movies[m.UUID]
	if !ok {
		return domain.ErrMovieNotFound
	}
	row := newMovieRow(m)
	row.movie.ID = existing.movie.ID
	r.s.movies[m.UUID] = row
	return nil
}

func (r *MovieRepository) Delete(_ context.Context, uuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.movies[uuid]; !ok {
		return domain.ErrMovieNotFound
	}
	delete(r.s.movies, uuid)
	for id, rental := range r.s.rentals {
		if rental.MovieUUID == uuid {
			delete(r.s.rentals, id)
		}
	}
	return nil
}

func (r *MovieRepository) List(_ context.Context, f ports.MovieFilter) ([]*domain.Movie, int64, error) {
	r.s.mu.RLock()
	all := make([]*domain.Movie, 0, len(r.s.movies))
	for _, row := range r.s.movies {
		all = append(all, r.s.hydrateMovie(row))
	}
	rented := r.activeMovieUUIDs(f.RentedBy)
	r.s.mu.RUnlock()

	page := query.Run(all, moviePredicates(f, rented), f.Ordering, movieSorter, f.Page)
	return page.Items, page.Count, nil
}

// activeMovieUUIDs must be called with the read lock held.
func (r *MovieRepository) activeMovieUUIDs(userUUID string) map[string]struct{} {
	if userUUID == "" {
		return nil
	}
	out := make(map[string]struct{})
	for _, rental := range r.s.rentals {
		if rental.UserUUID == userUUID && rental.IsActive() {
			out[rental.MovieUUID] = struct{}{}
		}
	}
	return out
}

func moviePredicates(f ports.MovieFilter, rented map[string]struct{}) []query.Predicate[*domain.Movie] {
	var preds []query.Predicate[*domain.Movie]
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(m *domain.Movie) bool { return containsFold(m.Title, needle) })
	}
	if f.Year != nil {
		year := *f.Year
		preds = append(preds, func(m *domain.Movie) bool { return m.Year == year })
	}
	if f.Director != nil {
		director := *f.Director
		preds = append(preds, func(m *domain.Movie) bool { return m.Director == director })
	}
	if len(f.GenreUUIDs) > 0 {
		preds = append(preds, func(m *domain.Movie) bool {
			for _, id := range f.GenreUUIDs {
				if !m.HasGenre(id) {
					return false
				}
			}
			return true
		})
	}
	if f.RentedBy != "" {
		preds = append(preds, func(m *domain.Movie) bool {
			_, ok := rented[m.UUID]
			return ok
		})
	}
	return preds
}

func newMovieRow(m *domain.Movie) *movieRow {
	row := &movieRow{movie: *m}
	row.movie.Genres = nil
	for _, g := range m.Genres {
		if !slices.Contains(row.genreUUIDs, g.UUID) {
			row.genreUUIDs = append(row.genreUUIDs, g.UUID)
		}
	}
	return row
}

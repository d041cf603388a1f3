package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var genreSorter = query.Sorter[*domain.Genre]{
	Fields: map[string]query.Comparator[*domain.Genre]{
		"name": func(a, b *domain.Genre) int { return strings.Compare(a.Name, b.Name) },
	},
	Tiebreak: func(a, b *domain.Genre) int { return strings.Compare(a.UUID, b.UUID) },
}

type GenreRepository struct {
	s *Store
}

func (r *GenreRepository) Create(_ context.Context, g *domain.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(g.Name, "") {
		return domain.ErrDuplicateGenreName
	}
	g.ID = r.s.nextID()
	c := *g
	r.s.genres[g.UUID] = &c
	return nil
}

func (r *GenreRepository) FindByUUID(_ context.Context, uuid string) (*domain.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.genres[uuid]
	if !ok {
		return nil, domain.ErrGenreNotFound
	}
	c := *g
	return &c, nil
}

func (r *GenreRepository) FindByNames(_ context.Context, names []string) ([]*domain.Genre, error) {
	return r.match(func(g *domain.Genre) bool { return slices.Contains(names, g.Name) }), nil
}

func (r *GenreRepository) MatchNames(_ context.Context, names []string) ([]*domain.Genre, error) {
	return r.match(func(g *domain.Genre) bool {
		return slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, g.Name) })
	}), nil
}

func (r *GenreRepository) match(keep func(*domain.Genre) bool) []*domain.Genre {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Genre
	for _, g := range r.s.genres {
		if keep(g) {
			c := *g
			out = append(out, &c)
		}
	}
	return out
}

func (r *GenreRepository) Update(_ context.Context, g *domain.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.genres[g.UUID]
	if !ok {
		return domain.ErrGenreNotFound
	}
	if r.nameTaken(g.Name, g.UUID) {
		return domain.ErrDuplicateGenreName
	}
	existing.Name = g.Name
	return nil
}

func (r *GenreRepository) Delete(_ context.Context, uuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.genres[uuid]; !ok {
		return domain.ErrGenreNotFound
	}
	delete(r.s.genres, uuid)
	for _, row := range r.s.movies {
		row.genreUUIDs = slices.DeleteFunc(row.genreUUIDs, func(id string) bool { return id == uuid })
	}
	return nil
}

func (r *GenreRepository) List(_ context.Context, f ports.GenreFilter) ([]*domain.Genre, int64, error) {
	r.s.mu.RLock()
	all := make([]*domain.Genre, 0, len(r.s.genres))
	for _, g := range r.s.genres {
		c := *g
		all = append(all, &c)
	}
	r.s.mu.RUnlock()

	var preds []query.Predicate[*domain.Genre]
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(g *domain.Genre) bool { return containsFold(g.Name, needle) })
	}
	page := query.Run(all, preds, f.Ordering, genreSorter, f.Page)
	return page.Items, page.Count, nil
}

// nameTaken must be called with the lock held.
func (r *GenreRepository) nameTaken(name, exceptUUID string) bool {
	for _, g := range r.s.genres {
		if g.Name == name && g.UUID != exceptUUID {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var (
	genreOrderFields = []string{"name"}
	movieOrderFields = []string{"title", "year"}
)

type catalogService struct {
	genres ports.GenreRepository
	movies ports.MovieRepository
	log    zerolog.Logger
}

// NewCatalogService returns the genre and movie catalog service.
func NewCatalogService(genres ports.GenreRepository, movies ports.MovieRepository, log zerolog.Logger) ports.CatalogService {
	return &catalogService{genres: genres, movies: movies, log: log}
}

// ── Genres ────────────────────────────────────────────────────────────────────

func (s *catalogService) ListGenres(ctx context.Context, q ports.GenreQuery) (query.Page[*domain.Genre], error) {
	filter := ports.GenreFilter{
		Search:   q.Search,
		Ordering: query.ParseOrdering(q.OrderBy, genreOrderFields, query.Asc("name")),
		Page:     q.Page,
	}
	genres, total, err := s.genres.List(ctx, filter)
	if err != nil {
		return query.Page[*domain.Genre]{}, fmt.Errorf("list genres: %w", err)
	}
	return query.NewPage(genres, total, q.Page), nil
}

func (s *catalogService) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	if !isUUID(id) {
		return nil, domain.ErrGenreNotFound
	}
	return s.genres.FindByUUID(ctx, id)
}

func (s *catalogService) CreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	if err := domain.ValidateGenreName(name); err != nil {
		return nil, err
	}
	g := &domain.Genre{UUID: uuid.NewString(), Name: name}
	if err := s.genres.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create genre: %w", err)
	}
	s.log.Info().Str("genre", g.UUID).Str("name", g.Name).Msg("genre created")
	return g, nil
}

func (s *catalogService) RenameGenre(ctx context.Context, id, name string) (*domain.Genre, error) {
	g, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateGenreName(name); err != nil {
		return nil, err
	}
	g.Name = name
	if err := s.genres.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("rename genre: %w", err)
	}
	return g, nil
}

func (s *catalogService) DeleteGenre(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrGenreNotFound
	}
	if err := s.genres.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	s.log.Info().Str("genre", id).Msg("genre deleted")
	return nil
}

// ── Movies ────────────────────────────────────────────────────────────────────

func (s *catalogService) ListMovies(ctx context.Context, q ports.MovieQuery) (query.Page[*domain.Movie], error) {
	filter, ok, err := s.movieFilter(ctx, q)
	if err != nil || !ok {
		return query.EmptyPage[*domain.Movie](q.Page), err
	}
	return s.listMovies(ctx, filter)
}

// Library lists the movies the actor currently holds an active rental for.
func (s *catalogService) Library(ctx context.Context, actor *domain.Actor, q ports.MovieQuery) (query.Page[*domain.Movie], error) {
	if actor == nil {
		return query.Page[*domain.Movie]{}, domain.ErrUnauthenticated
	}
	filter, ok, err := s.movieFilter(ctx, q)
	if err != nil || !ok {
		return query.EmptyPage[*domain.Movie](q.Page), err
	}
	filter.RentedBy = actor.UUID
	return s.listMovies(ctx, filter)
}

func (s *catalogService) listMovies(ctx context.Context, filter ports.MovieFilter) (query.Page[*domain.Movie], error) {
	movies, total, err := s.movies.List(ctx, filter)
	if err != nil {
		return query.Page[*domain.Movie]{}, fmt.Errorf("list movies: %w", err)
	}
	return query.NewPage(movies, total, filter.Page), nil
}

// movieFilter converts raw query values. ok=false means nothing can match.
func (s *catalogService) movieFilter(ctx context.Context, q ports.MovieQuery) (ports.MovieFilter, bool, error) {
	filter := ports.MovieFilter{
		Search:   q.Search,
		Director: q.Director,
		Ordering: query.ParseOrdering(q.OrderBy, movieOrderFields, query.Asc("title")),
		Page:     q.Page,
	}

	if q.Year != nil {
		year, err := strconv.Atoi(strings.TrimSpace(*q.Year))
		if err != nil {
			return filter, false, nil
		}
		filter.Year = &year
	}

	if q.Genre != nil {
		var names []string
		for _, n := range strings.Split(*q.Genre, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return filter, false, nil
		}
		matched, err := s.genres.MatchNames(ctx, names)
		if err != nil {
			return filter, false, fmt.Errorf("match genres: %w", err)
		}
		if len(matched) == 0 {
			return filter, false, nil
		}
		for _, g := range matched {
			filter.GenreUUIDs = append(filter.GenreUUIDs, g.UUID)
		}
	}

	return filter, true, nil
}

func (s *catalogService) GetMovie(ctx context.Context, id string) (*domain.Movie, error) {
	if !isUUID(id) {
		return nil, domain.ErrMovieNotFound
	}
	return s.movies.FindByUUID(ctx, id)
}

func (s *catalogService) CreateMovie(ctx context.Context, in ports.CreateMovieInput) (*domain.Movie, error) {
	m := &domain.Movie{
		UUID:     uuid.NewString(),
		Title:    in.Title,
		Year:     in.Year,
		Summary:  in.Summary,
		Director: in.Director,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}
	m.Genres = genres

	if err := s.movies.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	s.log.Info().Str("movie", m.UUID).Str("title", m.Title).Msg("movie created")
	return m, nil
}

func (s *catalogService) UpdateMovie(ctx context.Context, id string, in ports.UpdateMovieInput) (*domain.Movie, error) {
	m, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.Year != nil {
		m.Year = *in.Year
	}
	if in.Summary != nil {
		m.Summary = *in.Summary
	}
	if in.Director != nil {
		m.Director = *in.Director
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if in.Genres != nil {
		genres, err := s.resolveGenres(ctx, *in.Genres)
		if err != nil {
			return nil, err
		}
		m.Genres = genres
	}

	if err := s.movies.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return m, nil
}

func (s *catalogService) DeleteMovie(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrMovieNotFound
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	s.log.Info().Str("movie", id).Msg("movie deleted")
	return nil
}

// resolveGenres maps exact genre names to stored genres.
// Any unknown name fails the whole call so no partial movie is written.
func (s *catalogService) resolveGenres(ctx context.Context, names []string) ([]domain.Genre, error) {
	names = domain.DedupeNames(names)
	if len(names) == 0 {
		return []domain.Genre{}, nil
	}

	found, err := s.genres.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}

	byName := make(map[string]*domain.Genre, len(found))
	for _, g := range found {
		byName[g.Name] = g
	}
	var missing []string
	out := make([]domain.Genre, 0, len(names))
	for _, n := range names {
		g, ok := byName[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out = append(out, *g)
	}
	if len(missing) > 0 {
		return nil, &domain.UnknownGenreError{Names: missing}
	}
	return out, nil
}

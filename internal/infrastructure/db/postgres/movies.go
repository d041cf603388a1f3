package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

const movieColumns = `m.id, m.uuid, m.title, m.year, m.summary, m.director`

var movieOrderColumns = map[string]string{"title": "m.title", "year": "m.year"}

type MovieRepository struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO movies (uuid, title, year, summary, director)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			m.UUID, m.Title, m.Year, m.Summary, m.Director,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert movie: %w", err)
		}
		return linkGenres(ctx, tx, id, m.Genres)
	})
	if err != nil {
		return err
	}
	m.ID = formatID(id)
	return nil
}

func (r *MovieRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+movieColumns+` FROM movies m WHERE m.uuid = $1`, uuid)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	movies, err := collectMovies(ctx, r.pool, rows)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, domain.ErrMovieNotFound
	}
	return movies[0], nil
}

// Update replaces the scalar fields and the whole genre set atomically.
func (r *MovieRepository) Update(ctx context.Context, m *domain.Movie) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			UPDATE movies SET title = $2, year = $3, summary = $4, director = $5
			WHERE uuid = $1 RETURNING id`,
			m.UUID, m.Title, m.Year, m.Summary, m.Director,
		).Scan(&id)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrMovieNotFound
			}
			return fmt.Errorf("update movie: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM movie_genres WHERE movie_id = $1`, id); err != nil {
			return fmt.Errorf("clear movie genres: %w", err)
		}
		return linkGenres(ctx, tx, id, m.Genres)
	})
}

// Delete cascades to the movie's rentals and genre links through foreign keys.
func (r *MovieRepository) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE uuid = $1`, uuid)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovieNotFound
	}
	return nil
}

func (r *MovieRepository) List(ctx context.Context, f ports.MovieFilter) ([]*domain.Movie, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	w := movieWhere(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies m`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	sql := `SELECT ` + movieColumns + ` FROM movies m` + w.String() +
		orderBy(f.Ordering, movieOrderColumns, "m.uuid") + limitOffset(w, f.Page)
	rows, err := r.pool.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	movies, err := collectMovies(ctx, r.pool, rows)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func movieWhere(f ports.MovieFilter) *where {
	w := &where{}
	if f.Search != "" {
		w.add("m.title ILIKE " + w.arg(likePattern(f.Search)))
	}
	if f.Year != nil {
		w.add("m.year = " + w.arg(*f.Year))
	}
	if f.Director != nil {
		w.add("m.director = " + w.arg(*f.Director))
	}
	if len(f.GenreUUIDs) > 0 {
		// Every requested genre must be attached.
		ids := w.arg(f.GenreUUIDs)
		want := w.arg(distinctCount(f.GenreUUIDs))
		w.add(`m.id IN (
			SELECT mg.movie_id FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
			WHERE g.uuid = ANY(` + ids + `)
			GROUP BY mg.movie_id HAVING COUNT(DISTINCT g.id) = ` + want + `)`)
	}
	if f.RentedBy != "" {
		w.add(`m.id IN (
			SELECT r.movie_id FROM rentals r JOIN users u ON u.id = r.user_id
			WHERE u.uuid = ` + w.arg(f.RentedBy) + ` AND NOT r.returned)`)
	}
	return w
}

func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func linkGenres(ctx context.Context, tx pgx.Tx, movieID int64, genres []domain.Genre) error {
	if len(genres) == 0 {
		return nil
	}
	uuids := make([]string, 0, len(genres))
	for _, g := range genres {
		uuids = append(uuids, g.UUID)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO movie_genres (movie_id, genre_id)
		SELECT $1, g.id FROM genres g WHERE g.uuid = ANY($2)
		ON CONFLICT DO NOTHING`, movieID, uuids)
	if err != nil {
		return fmt.Errorf("link movie genres: %w", err)
	}
	return nil
}

// collectMovies scans movie rows and attaches their genres with a single extra query.
func collectMovies(ctx context.Context, q querier, rows pgx.Rows) ([]*domain.Movie, error) {
	movies := []*domain.Movie{}
	byID := map[int64]*domain.Movie{}
	ids := []int64{}
	for rows.Next() {
		var (
			m  domain.Movie
			id int64
		)
		if err := rows.Scan(&id, &m.UUID, &m.Title, &m.Year, &m.Summary, &m.Director); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		m.ID = formatID(id)
		m.Genres = []domain.Genre{}
		movies = append(movies, &m)
		byID[id] = &m
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read movies: %w", err)
	}
	if len(ids) == 0 {
		return movies, nil
	}

	grows, err := q.Query(ctx, `
		SELECT mg.movie_id, g.id, g.uuid, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id = ANY($1)
		ORDER BY g.name`, ids)
	if err != nil {
		return nil, fmt.Errorf("load movie genres: %w", err)
	}
	defer grows.Close()
	for grows.Next() {
		var (
			movieID, genreID int64
			g                domain.Genre
		)
		if err := grows.Scan(&movieID, &genreID, &g.UUID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan movie genre: %w", err)
		}
		g.ID = formatID(genreID)
		if m, ok := byID[movieID]; ok {
			m.Genres = append(m.Genres, g)
		}
	}
	return movies, grows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

var genreOrderColumns = map[string]string{"name": "name"}

// GenreRepository relies on movie_genres cascading on delete to detach a
// removed genre from its movies.
type GenreRepository struct {
	pool *pgxpool.Pool
}

func scanGenre(row pgx.Row) (*domain.Genre, error) {
	var (
		g  domain.Genre
		id int64
	)
	if err := row.Scan(&id, &g.UUID, &g.Name); err != nil {
		return nil, err
	}
	g.ID = formatID(id)
	return &g, nil
}

func collectGenres(rows pgx.Rows) ([]*domain.Genre, error) {
	defer rows.Close()
	out := []*domain.Genre{}
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO genres (uuid, name) VALUES ($1, $2) RETURNING id`, g.UUID, g.Name,
	).Scan(&id)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrDuplicateGenreName
		}
		return fmt.Errorf("insert genre: %w", err)
	}
	g.ID = formatID(id)
	return nil
}

func (r *GenreRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	g, err := scanGenre(r.pool.QueryRow(ctx, `SELECT id, uuid, name FROM genres WHERE uuid = $1`, uuid))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrGenreNotFound
		}
		return nil, fmt.Errorf("find genre: %w", err)
	}
	return g, nil
}

func (r *GenreRepository) FindByNames(ctx context.Context, names []string) ([]*domain.Genre, error) {
	if len(names) == 0 {
		return []*domain.Genre{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, uuid, name FROM genres WHERE name = ANY($1) ORDER BY name`, names)
	if err != nil {
		return nil, fmt.Errorf("find genres by name: %w", err)
	}
	return collectGenres(rows)
}

func (r *GenreRepository) MatchNames(ctx context.Context, names []string) ([]*domain.Genre, error) {
	if len(names) == 0 {
		return []*domain.Genre{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, uuid, name FROM genres WHERE lower(name) = ANY($1) ORDER BY name`, lowered)
	if err != nil {
		return nil, fmt.Errorf("match genres by name: %w", err)
	}
	return collectGenres(rows)
}

func (r *GenreRepository) Update(ctx context.Context, g *domain.Genre) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE genres SET name = $2 WHERE uuid = $1`, g.UUID, g.Name)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrDuplicateGenreName
		}
		return fmt.Errorf("update genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGenreNotFound
	}
	return nil
}

func (r *GenreRepository) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM genres WHERE uuid = $1`, uuid)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGenreNotFound
	}
	return nil
}

func (r *GenreRepository) List(ctx context.Context, f ports.GenreFilter) ([]*domain.Genre, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w where
	if f.Search != "" {
		w.add("name ILIKE " + w.arg(likePattern(f.Search)))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM genres`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}

	sql := `SELECT id, uuid, name FROM genres` + w.String() +
		orderBy(f.Ordering, genreOrderColumns, "uuid") + limitOffset(&w, f.Page)
	rows, err := r.pool.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}
	genres, err := collectGenres(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}
	return genres, total, nil
}

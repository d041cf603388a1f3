package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

const (
	defaultTimeout = 10 * time.Second

	uniqueViolation = "23505"
)

// Config captures the settings needed to open a connection pool.
type Config struct {
	DSN      string
	MaxConns int32
	Timeout  time.Duration
}

// Connect opens a pgx pool and pings it before returning.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Store wires the table-backed repositories sharing one pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Users:   &UserRepository{pool: s.pool},
		Genres:  &GenreRepository{pool: s.pool},
		Movies:  &MovieRepository{pool: s.pool},
		Rentals: &RentalRepository{pool: s.pool},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close waits for in-flight connections to be released or ctx to expire.
func (s *Store) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pool.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		uuid          TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_staff      BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser  BOOLEAN NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		date_joined   TIMESTAMPTZ NOT NULL,
		last_login    TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id   BIGSERIAL PRIMARY KEY,
		uuid TEXT NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		CONSTRAINT genres_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id       BIGSERIAL PRIMARY KEY,
		uuid     TEXT NOT NULL UNIQUE,
		title    VARCHAR(255) NOT NULL,
		year     INTEGER NOT NULL CHECK (year >= 0 AND year <= 32767),
		summary  TEXT NOT NULL,
		director VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		genre_id BIGINT NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (movie_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id          BIGSERIAL PRIMARY KEY,
		uuid        TEXT NOT NULL UNIQUE,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		movie_id    BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		rental_date TIMESTAMPTZ NOT NULL,
		return_date TIMESTAMPTZ,
		returned    BOOLEAN NOT NULL DEFAULT FALSE,
		payment     DOUBLE PRECISION,
		CONSTRAINT rentals_state_check CHECK (
			(NOT returned AND return_date IS NULL AND payment IS NULL) OR
			(returned AND return_date IS NOT NULL AND payment IS NOT NULL)
		),
		CONSTRAINT rentals_return_after_rental CHECK (return_date IS NULL OR return_date >= rental_date)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS rentals_one_active_per_user_movie
		ON rentals (user_id, movie_id) WHERE NOT returned`,
	`CREATE INDEX IF NOT EXISTS rentals_movie_id_idx ON rentals (movie_id)`,
	`CREATE INDEX IF NOT EXISTS movie_genres_genre_id_idx ON movie_genres (genre_id)`,
}

// Migrate creates the schema when it does not exist yet. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// uniqueConstraint reports the violated constraint name of a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders an allow-listed ordering. tiebreak is always appended
// so that paging is deterministic. NULLs keep the Postgres default: last when
// ascending, first when descending.
func orderBy(ord query.Ordering, columns map[string]string, tiebreak string) string {
	parts := make([]string, 0, len(ord)+1)
	for _, f := range ord {
		col, ok := columns[f.Field]
		if !ok {
			continue
		}
		if f.Desc {
			parts = append(parts, col+" DESC")
		} else {
			parts = append(parts, col+" ASC")
		}
	}
	parts = append(parts, tiebreak+" ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// limitOffset appends the page window to w's arguments.
func limitOffset(w *where, page query.PageRequest) string {
	return " LIMIT " + w.arg(page.Limit()) + " OFFSET " + w.arg(page.Offset())
}

// likePattern escapes LIKE metacharacters so s matches as a literal substring.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

const userColumns = `id, uuid, email, first_name, last_name, password_hash,
	is_staff, is_superuser, is_active, date_joined, last_login`

var userOrderColumns = map[string]string{"email": "email", "date_joined": "date_joined"}

type UserRepository struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u  domain.User
		id int64
	)
	err := row.Scan(&id, &u.UUID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.DateJoined, &u.LastLogin)
	if err != nil {
		return nil, err
	}
	u.ID = formatID(id)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (uuid, email, first_name, last_name, password_hash,
			is_staff, is_superuser, is_active, date_joined, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		u.UUID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsStaff, u.IsSuperuser, u.IsActive, u.DateJoined.UTC(), u.LastLogin,
	).Scan(&id)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = formatID(id)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET email = $2, first_name = $3, last_name = $4, password_hash = $5,
			is_staff = $6, is_superuser = $7, is_active = $8, last_login = $9
		WHERE uuid = $1`,
		u.UUID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsStaff, u.IsSuperuser, u.IsActive, u.LastLogin,
	)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	return r.findOne(ctx, "uuid", uuid)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return u, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, uuid string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE uuid = $1`, uuid, at.UTC())
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w where
	if f.Search != "" {
		p := w.arg(likePattern(f.Search))
		w.add("(email ILIKE " + p + " OR first_name ILIKE " + p + " OR last_name ILIKE " + p + ")")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	sql := `SELECT ` + userColumns + ` FROM users` + w.String() +
		orderBy(f.Ordering, userOrderColumns, "uuid") + limitOffset(&w, f.Page)
	rows, err := r.pool.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

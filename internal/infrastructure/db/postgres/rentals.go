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

const rentalFrom = `
	FROM rentals r
	JOIN users u ON u.id = r.user_id
	JOIN movies m ON m.id = r.movie_id`

const rentalSelect = `
	SELECT r.id, r.uuid, r.rental_date, r.return_date, r.returned, r.payment, m.id,
		u.id, u.uuid, u.email, u.first_name, u.last_name, u.password_hash,
		u.is_staff, u.is_superuser, u.is_active, u.date_joined, u.last_login` + rentalFrom

var rentalOrderColumns = map[string]string{
	"movie_title": "m.title",
	"movie_year":  "m.year",
	"rental_date": "r.rental_date",
	"return_date": "r.return_date",
	"payment":     "r.payment",
}

// RentalRepository relies on the partial unique index
// rentals_one_active_per_user_movie to reject a second active rental.
type RentalRepository struct {
	pool *pgxpool.Pool
}

func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO rentals (uuid, user_id, movie_id, rental_date, returned)
		SELECT $1, u.id, m.id, $4, FALSE
		FROM users u, movies m
		WHERE u.uuid = $2 AND m.uuid = $3
		RETURNING id`,
		rental.UUID, rental.UserUUID, rental.MovieUUID, rental.RentalDate.UTC(),
	).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrMovieNotFound
		}
		if name, ok := uniqueConstraint(err); ok && name == "rentals_one_active_per_user_movie" {
			return domain.ErrAlreadyRented
		}
		return fmt.Errorf("insert rental: %w", err)
	}
	rental.ID = formatID(id)
	return nil
}

func (r *RentalRepository) FindByUUID(ctx context.Context, uuid, ownerUUID string) (*domain.Rental, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	w := &where{}
	w.add("r.uuid = " + w.arg(uuid))
	if ownerUUID != "" {
		w.add("u.uuid = " + w.arg(ownerUUID))
	}
	rows, err := r.pool.Query(ctx, rentalSelect+w.String(), w.args...)
	if err != nil {
		return nil, fmt.Errorf("find rental: %w", err)
	}
	rentals, err := r.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(rentals) == 0 {
		return nil, domain.ErrRentalNotFound
	}
	return rentals[0], nil
}

// MarkReturned only matches an active row, so of two concurrent returns
// exactly one updates it.
func (r *RentalRepository) MarkReturned(ctx context.Context, uuid string, returnDate time.Time, payment float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE rentals SET returned = TRUE, return_date = $2, payment = $3
		WHERE uuid = $1 AND NOT returned`,
		uuid, returnDate.UTC(), payment,
	)
	if err != nil {
		return fmt.Errorf("return rental: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rentals WHERE uuid = $1)`, uuid,
	).Scan(&exists); err != nil {
		return fmt.Errorf("return rental: %w", err)
	}
	if !exists {
		return domain.ErrRentalNotFound
	}
	return domain.ErrAlreadyReturned
}

func (r *RentalRepository) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM rentals WHERE uuid = $1`, uuid)
	if err != nil {
		return fmt.Errorf("delete rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRentalNotFound
	}
	return nil
}

func (r *RentalRepository) List(ctx context.Context, f ports.RentalFilter) ([]*domain.Rental, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	w := rentalWhere(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+rentalFrom+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rentals: %w", err)
	}

	sql := rentalSelect + w.String() +
		orderBy(f.Ordering, rentalOrderColumns, "r.uuid") + limitOffset(w, f.Page)
	rows, err := r.pool.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: %w", err)
	}
	rentals, err := r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

func rentalWhere(f ports.RentalFilter) *where {
	w := &where{}
	if f.OwnerUUID != "" {
		w.add("u.uuid = " + w.arg(f.OwnerUUID))
	}
	if f.UserUUID != "" {
		w.add("u.uuid = " + w.arg(f.UserUUID))
	}
	if f.MovieUUID != "" {
		w.add("m.uuid = " + w.arg(f.MovieUUID))
	}
	switch f.Status {
	case domain.RentalActive:
		w.add("NOT r.returned")
	case domain.RentalReturned:
		w.add("r.returned")
	}
	if f.Search != "" {
		w.add("m.title ILIKE " + w.arg(likePattern(f.Search)))
	}
	return w
}

// collect scans rental rows with their user and then loads the referenced
// movies, genres included, in one more round trip.
func (r *RentalRepository) collect(ctx context.Context, rows pgx.Rows) ([]*domain.Rental, error) {
	rentals := []*domain.Rental{}
	movieOf := map[*domain.Rental]int64{}
	movieIDs := []int64{}
	for rows.Next() {
		var (
			rental           domain.Rental
			u                domain.User
			id, movieID, uid int64
		)
		err := rows.Scan(&id, &rental.UUID, &rental.RentalDate, &rental.ReturnDate, &rental.Returned, &rental.Payment, &movieID,
			&uid, &u.UUID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.DateJoined, &u.LastLogin)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		rental.ID = formatID(id)
		u.ID = formatID(uid)
		rental.User = &u
		rental.UserUUID = u.UUID
		rentals = append(rentals, &rental)
		movieOf[&rental] = movieID
		movieIDs = append(movieIDs, movieID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rentals: %w", err)
	}
	if len(rentals) == 0 {
		return rentals, nil
	}

	mrows, err := r.pool.Query(ctx, `SELECT `+movieColumns+` FROM movies m WHERE m.id = ANY($1)`, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("load rental movies: %w", err)
	}
	movies, err := collectMovies(ctx, r.pool, mrows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	for _, rental := range rentals {
		if m, ok := byID[formatID(movieOf[rental])]; ok {
			rental.Movie = m
			rental.MovieUUID = m.UUID
		}
	}
	return rentals, nil
}

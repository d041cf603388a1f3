package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

func seed(t *testing.T) (*Store, ports.Repositories) {
	t.Helper()
	s := NewStore()
	repos := s.Repositories()
	ctx := context.Background()

	for _, u := range []*domain.User{
		{UUID: "u-a", Email: "a@example.com", IsActive: true},
		{UUID: "u-b", Email: "b@example.com", IsActive: true},
	} {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	action := &domain.Genre{UUID: "g-action", Name: "Action"}
	if err := repos.Genres.Create(ctx, action); err != nil {
		t.Fatalf("seed genre: %v", err)
	}
	movie := &domain.Movie{UUID: "m-1", Title: "Heat", Year: 1995, Summary: "s", Director: "Mann", Genres: []domain.Genre{*action}}
	if err := repos.Movies.Create(ctx, movie); err != nil {
		t.Fatalf("seed movie: %v", err)
	}
	return s, repos
}

func TestRentalRepository_ParallelCreateOneWins(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()

	const n = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repos.Rentals.Create(ctx, domain.NewRental(fmt.Sprintf("r-%d", i), "u-a", "m-1", time.Now()))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAlreadyRented):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if ok != 1 || conflict != n-1 {
		t.Fatalf("expected exactly one success, got ok=%d conflict=%d", ok, conflict)
	}
}

func TestRentalRepository_ParallelReturnOneWins(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()
	start := time.Now()
	_ = repos.Rentals.Create(ctx, domain.NewRental("r-1", "u-a", "m-1", start))

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repos.Rentals.MarkReturned(ctx, "r-1", start.Add(time.Duration(i)*time.Hour), float64(i))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrAlreadyReturned) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful return, got %d", wins)
	}
	r, _ := repos.Rentals.FindByUUID(ctx, "r-1", "")
	if err := r.Validate(); err != nil {
		t.Fatalf("rental left in invalid state: %v", err)
	}
}

func TestRentalRepository_ActiveUniquenessAllowsRentAgainAfterReturn(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()

	_ = repos.Rentals.Create(ctx, domain.NewRental("r-1", "u-a", "m-1", time.Now()))
	if err := repos.Rentals.Create(ctx, domain.NewRental("r-2", "u-b", "m-1", time.Now())); err != nil {
		t.Fatalf("another user may rent the same movie: %v", err)
	}
	if err := repos.Rentals.MarkReturned(ctx, "r-1", time.Now(), 1); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := repos.Rentals.Create(ctx, domain.NewRental("r-3", "u-a", "m-1", time.Now())); err != nil {
		t.Fatalf("rent again after return: %v", err)
	}
}

func TestRentalRepository_ScopedLookupHidesOtherUsers(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()
	_ = repos.Rentals.Create(ctx, domain.NewRental("r-1", "u-a", "m-1", time.Now()))

	if _, err := repos.Rentals.FindByUUID(ctx, "r-1", "u-b"); !errors.Is(err, domain.ErrRentalNotFound) {
		t.Fatalf("expected ErrRentalNotFound for foreign rental, got %v", err)
	}
	r, err := repos.Rentals.FindByUUID(ctx, "r-1", "u-a")
	if err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if r.User == nil || r.User.Email != "a@example.com" || r.Movie == nil || r.Movie.Title != "Heat" {
		t.Fatalf("rental not hydrated: %+v", r)
	}
}

func TestMovieRepository_DeleteCascadesRentals(t *testing.T) {
	s, repos := seed(t)
	ctx := context.Background()
	_ = repos.Rentals.Create(ctx, domain.NewRental("r-1", "u-a", "m-1", time.Now()))

	if err := repos.Movies.Delete(ctx, "m-1"); err != nil {
		t.Fatalf("delete movie: %v", err)
	}
	if len(s.rentals) != 0 {
		t.Fatalf("expected rentals to be removed with their movie, %d left", len(s.rentals))
	}
}

func TestGenreRepository_DeleteDetachesFromMovies(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()

	if err := repos.Genres.Delete(ctx, "g-action"); err != nil {
		t.Fatalf("delete genre: %v", err)
	}
	m, _ := repos.Movies.FindByUUID(ctx, "m-1")
	if len(m.Genres) != 0 {
		t.Fatalf("expected no genres left, got %v", m.GenreNames())
	}
}

func TestGenreRepository_UniqueName(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()

	if err := repos.Genres.Create(ctx, &domain.Genre{UUID: "g-2", Name: "Action"}); !errors.Is(err, domain.ErrDuplicateGenreName) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := repos.Genres.Create(ctx, &domain.Genre{UUID: "g-3", Name: "action"}); err != nil {
		t.Fatalf("names differing in case are distinct: %v", err)
	}
	matched, _ := repos.Genres.MatchNames(ctx, []string{"ACTION"})
	if len(matched) != 2 {
		t.Fatalf("expected case-insensitive match on both genres, got %d", len(matched))
	}
}

func TestMovieRepository_ListRentedBy(t *testing.T) {
	_, repos := seed(t)
	ctx := context.Background()
	_ = repos.Movies.Create(ctx, &domain.Movie{UUID: "m-2", Title: "Ronin", Year: 1998, Summary: "s", Director: "Frankenheimer"})
	_ = repos.Rentals.Create(ctx, domain.NewRental("r-1", "u-a", "m-2", time.Now()))

	movies, total, err := repos.Movies.List(ctx, ports.MovieFilter{RentedBy: "u-a", Ordering: query.Asc("title")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || movies[0].UUID != "m-2" {
		t.Fatalf("expected only the rented movie, got %d", total)
	}
}

func TestDenylist(t *testing.T) {
	d := NewDenylist()
	ctx := context.Background()

	_ = d.Revoke(ctx, "live", time.Now().Add(time.Hour))
	_ = d.Revoke(ctx, "stale", time.Now().Add(-time.Second))

	if revoked, _ := d.IsRevoked(ctx, "live"); !revoked {
		t.Error("expected live jti to be revoked")
	}
	if revoked, _ := d.IsRevoked(ctx, "stale"); revoked {
		t.Error("expired entries should not count as revoked")
	}
	if revoked, _ := d.IsRevoked(ctx, "other"); revoked {
		t.Error("unknown jti reported as revoked")
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/infrastructure/db/memory"
)

func strPtr(s string) *string { return &s }

func newCatalogFixture(t *testing.T) (ports.CatalogService, ports.Repositories) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	svc := NewCatalogService(repos.Genres, repos.Movies, discardLogger)
	ctx := context.Background()

	for _, name := range []string{"Adventure", "Fantasy", "Action", "Science Fiction", "Animation", "Family"} {
		if _, err := svc.CreateGenre(ctx, name); err != nil {
			t.Fatalf("create genre %s: %v", name, err)
		}
	}
	movies := []ports.CreateMovieInput{
		{Title: "The Lord of the Rings: The Fellowship of the Ring", Year: 2001, Summary: "s", Director: "Peter Jackson", Genres: []string{"Adventure", "Fantasy", "Action"}},
		{Title: "The Lord of the Rings: The Two Towers", Year: 2002, Summary: "s", Director: "Peter Jackson", Genres: []string{"Adventure", "Fantasy", "Action"}},
		{Title: "The Lord of the Rings: The Return of the King", Year: 2003, Summary: "s", Director: "Peter Jackson", Genres: []string{"Adventure", "Fantasy", "Action"}},
		{Title: "Alita: Battle Angel", Year: 2019, Summary: "s", Director: "Robert Rodriguez", Genres: []string{"Action", "Science Fiction"}},
		{Title: "The Incredibles", Year: 2004, Summary: "s", Director: "Brad Bird", Genres: []string{"Action", "Adventure", "Animation", "Family"}},
	}
	for _, in := range movies {
		if _, err := svc.CreateMovie(ctx, in); err != nil {
			t.Fatalf("create movie %s: %v", in.Title, err)
		}
	}
	return svc, repos
}

func TestCatalogService_ListMovies_GenreIntersection(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		genre string
		want  int64
	}{
		{"adventure, FANTASY", 3},
		{"Action", 5},
		{"Action,Nonexistent", 5},
		{"Nonexistent", 0},
		{"Adventure,Family", 1},
		{"", 0},
	}
	for _, tc := range cases {
		page, err := svc.ListMovies(ctx, ports.MovieQuery{Genre: strPtr(tc.genre)})
		if err != nil {
			t.Fatalf("genre=%q: unexpected error: %v", tc.genre, err)
		}
		if page.Count != tc.want {
			t.Errorf("genre=%q: expected %d movies, got %d", tc.genre, tc.want, page.Count)
		}
	}
}

func TestCatalogService_ListMovies_YearAndDirector(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	if page, _ := svc.ListMovies(ctx, ports.MovieQuery{Year: strPtr("2002")}); page.Count != 1 {
		t.Errorf("year=2002: expected 1, got %d", page.Count)
	}
	if page, _ := svc.ListMovies(ctx, ports.MovieQuery{Year: strPtr("two thousand")}); page.Count != 0 || len(page.Items) != 0 {
		t.Errorf("non-integer year must match nothing, got %d", page.Count)
	}
	if page, _ := svc.ListMovies(ctx, ports.MovieQuery{Director: strPtr("Peter Jackson")}); page.Count != 3 {
		t.Errorf("director: expected 3, got %d", page.Count)
	}
	if page, _ := svc.ListMovies(ctx, ports.MovieQuery{Search: "lord of"}); page.Count != 3 {
		t.Errorf("search: expected 3, got %d", page.Count)
	}
}

func TestCatalogService_ListMovies_Ordering(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	page, _ := svc.ListMovies(ctx, ports.MovieQuery{OrderBy: "-year"})
	if page.Items[0].Title != "Alita: Battle Angel" {
		t.Fatalf("expected newest first, got %s", page.Items[0].Title)
	}
	page, _ = svc.ListMovies(ctx, ports.MovieQuery{OrderBy: "unknown_field"})
	if page.Items[0].Title != "Alita: Battle Angel" || page.Items[4].Title != "The Lord of the Rings: The Two Towers" {
		t.Fatalf("expected default title ordering, got %s .. %s", page.Items[0].Title, page.Items[4].Title)
	}
}

func TestCatalogService_CreateMovie_UnknownGenre(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.CreateMovie(ctx, ports.CreateMovieInput{
		Title: "Test", Year: 2020, Summary: "s", Director: "d", Genres: []string{"Action", "Test"},
	})
	var unknown *domain.UnknownGenreError
	if !errors.As(err, &unknown) || len(unknown.Names) != 1 || unknown.Names[0] != "Test" {
		t.Fatalf("expected UnknownGenreError for Test, got %v", err)
	}
	if page, _ := svc.ListMovies(ctx, ports.MovieQuery{}); page.Count != 5 {
		t.Fatalf("no movie should have been persisted, got %d", page.Count)
	}
}

func TestCatalogService_CreateMovie_DuplicateGenresCollapse(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	m, err := svc.CreateMovie(context.Background(), ports.CreateMovieInput{
		Title: "Up", Year: 2009, Summary: "s", Director: "Pete Docter", Genres: []string{"Family", "Family", "Animation"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Genres) != 2 {
		t.Fatalf("expected 2 distinct genres, got %v", m.GenreNames())
	}
}

func TestCatalogService_UpdateMovie_Partial(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()
	page, _ := svc.ListMovies(ctx, ports.MovieQuery{Search: "Alita"})
	alita := page.Items[0]

	year := 2018
	updated, err := svc.UpdateMovie(ctx, alita.UUID, ports.UpdateMovieInput{Year: &year, Genres: &[]string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Year != 2018 || updated.Title != alita.Title || len(updated.Genres) != 0 {
		t.Fatalf("partial update applied incorrectly: %+v", updated)
	}
}

func TestCatalogService_Genres(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	if _, err := svc.CreateGenre(ctx, "Action"); !errors.Is(err, domain.ErrDuplicateGenreName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
	var verr *domain.ValidationError
	if _, err := svc.CreateGenre(ctx, "  "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.GetGenre(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrGenreNotFound) {
		t.Fatalf("expected not found for malformed uuid, got %v", err)
	}

	page, _ := svc.ListGenres(ctx, ports.GenreQuery{Search: "fan"})
	if page.Count != 1 || page.Items[0].Name != "Fantasy" {
		t.Fatalf("search should find Fantasy, got %d", page.Count)
	}

	renamed, err := svc.RenameGenre(ctx, page.Items[0].UUID, "High Fantasy")
	if err != nil || renamed.Name != "High Fantasy" {
		t.Fatalf("rename failed: %v", err)
	}
	if err := svc.DeleteGenre(ctx, renamed.UUID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	movies, _ := svc.ListMovies(ctx, ports.MovieQuery{Genre: strPtr("High Fantasy")})
	if movies.Count != 0 {
		t.Fatalf("deleted genre should no longer match, got %d", movies.Count)
	}
	lotr, _ := svc.ListMovies(ctx, ports.MovieQuery{Search: "Two Towers"})
	if len(lotr.Items[0].Genres) != 2 {
		t.Fatalf("deleted genre should be detached from movies, got %v", lotr.Items[0].GenreNames())
	}
}

// Command create-movie adds a movie to the configured datastore. Genres that
// do not exist yet are skipped with a warning.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/moviestore/rental-api/internal/app"
	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/service"
	"github.com/moviestore/rental-api/internal/pkg/config"
	"github.com/moviestore/rental-api/pkg/logger"
)

func main() {
	var (
		title    string
		year     int
		director string
		summary  string
		genres   string
	)

	flag.StringVar(&title, "title", "", "Movie title")
	flag.IntVar(&year, "year", 0, "Release year")
	flag.StringVar(&director, "director", "", "Director")
	flag.StringVar(&summary, "summary", "", "Short summary")
	flag.StringVar(&genres, "genres", "", "Comma-separated genre names")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		fatalf("open datastore: %v", err)
	}
	defer storage.Close(context.Background())

	known, err := existingGenres(ctx, storage.Repos.Genres, splitNames(genres))
	if err != nil {
		fatalf("look up genres: %v", err)
	}

	catalog := service.NewCatalogService(storage.Repos.Genres, storage.Repos.Movies, log)
	movie, err := catalog.CreateMovie(ctx, ports.CreateMovieInput{
		Title:    title,
		Year:     year,
		Director: director,
		Summary:  summary,
		Genres:   known,
	})
	if err != nil {
		fatalf("movie creation failed: %v", err)
	}
	fmt.Printf("Movie %s created with uuid %s\n", movie.Title, movie.UUID)
}

func splitNames(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return domain.DedupeNames(names)
}

// existingGenres keeps the names that match a stored genre exactly and warns
// about the rest.
func existingGenres(ctx context.Context, repo ports.GenreRepository, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	found, err := repo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(found))
	for _, g := range found {
		stored[g.Name] = true
	}

	var known []string
	for _, n := range names {
		if !stored[n] {
			fmt.Fprintf(os.Stderr, "Genre %s does not exist. Skipping...\n", n)
			continue
		}
		known = append(known, n)
	}
	return known, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Command create-genre adds a genre to the configured datastore.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/moviestore/rental-api/internal/app"
	"github.com/moviestore/rental-api/internal/core/service"
	"github.com/moviestore/rental-api/internal/pkg/config"
	"github.com/moviestore/rental-api/pkg/logger"
)

func main() {
	name := flag.String("name", "", "Genre name")
	flag.Parse()

	if *name == "" {
		fatalf("--name is required")
	}

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

	catalog := service.NewCatalogService(storage.Repos.Genres, storage.Repos.Movies, log)
	genre, err := catalog.CreateGenre(ctx, *name)
	if err != nil {
		fatalf("genre creation failed: %v", err)
	}
	fmt.Printf("Genre %s created with uuid %s\n", genre.Name, genre.UUID)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

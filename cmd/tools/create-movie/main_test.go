package main

import (
	"context"
	"testing"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/infrastructure/db/memory"
)

func TestSplitNames(t *testing.T) {
	got := splitNames(" Drama, ,Comedy,Drama ")
	if len(got) != 2 || got[0] != "Drama" || got[1] != "Comedy" {
		t.Fatalf("unexpected names: %v", got)
	}
	if splitNames("") != nil {
		t.Fatalf("expected no names for empty input")
	}
}

func TestExistingGenresSkipsUnknown(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	if err := repos.Genres.Create(ctx, &domain.Genre{UUID: "g-1", Name: "Drama"}); err != nil {
		t.Fatalf("seed genre: %v", err)
	}

	known, err := existingGenres(ctx, repos.Genres, []string{"Drama", "Noir", "drama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(known) != 1 || known[0] != "Drama" {
		t.Fatalf("expected only Drama, got %v", known)
	}
}

package ports

import "context"

// Repositories bundles one storage backend's repositories.
type Repositories struct {
	Users   UserRepository
	Genres  GenreRepository
	Movies  MovieRepository
	Rentals RentalRepository
}

// Pinger is implemented by anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

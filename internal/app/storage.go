package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/infrastructure/db/memory"
	"github.com/moviestore/rental-api/internal/infrastructure/db/mongo"
	"github.com/moviestore/rental-api/internal/infrastructure/db/postgres"
	"github.com/moviestore/rental-api/internal/pkg/config"
)

// Storage is an opened backend and the means to release it.
type Storage struct {
	Repos  ports.Repositories
	Pinger ports.Pinger
	close  func(context.Context) error
}

// Close releases the backend connections. It is safe on the memory backend.
func (s *Storage) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStorage connects the backend selected by STORAGE_DRIVER and prepares
// its schema or indexes.
func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		store := mongo.NewStore(client, db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("storage: mongo connected")
		return &Storage{Repos: store.Repositories(), Pinger: store, close: store.Close}, nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info().Msg("storage: postgres connected")
		return &Storage{Repos: store.Repositories(), Pinger: store, close: store.Close}, nil

	default:
		store := memory.NewStore()
		log.Warn().Msg("storage: using in-memory store, data is lost on restart")
		return &Storage{Repos: store.Repositories(), Pinger: store}, nil
	}
}

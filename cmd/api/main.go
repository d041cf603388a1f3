// Command api serves the movie rental HTTP API.
//
// @title                       Movie Rental API
// @version                     1.0
// @description                 Catalog browsing, rentals and role-gated administration for a movie store.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviestore/rental-api/internal/app"
	"github.com/moviestore/rental-api/internal/pkg/config"
	"github.com/moviestore/rental-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "rental-api",
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	runErr := a.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("failed to close connections")
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

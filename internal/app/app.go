// Package app assembles the server from configuration: storage, token
// denylist, event delivery, services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/moviestore/rental-api/internal/api"
	"github.com/moviestore/rental-api/internal/api/handler"
	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/service"
	"github.com/moviestore/rental-api/internal/infrastructure/db/memory"
	"github.com/moviestore/rental-api/internal/infrastructure/db/redis"
	"github.com/moviestore/rental-api/internal/infrastructure/queue"
	"github.com/moviestore/rental-api/internal/pkg/config"
	"github.com/moviestore/rental-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived component of the server process.
type App struct {
	cfg        *config.Config
	log        zerolog.Logger
	echo       *echo.Echo
	dispatcher *queue.Dispatcher
	closers    []func(context.Context) error
}

// New connects every backing service. On error, whatever was already opened
// is closed again.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	if err := a.build(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	storage, err := OpenStorage(ctx, cfg, logger.For("storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, storage.Close)
	checks := map[string]ports.Pinger{"storage": storage.Pinger}

	denylist, err := a.openDenylist(ctx, checks)
	if err != nil {
		return err
	}

	publisher, err := a.openPublisher(checks)
	if err != nil {
		return err
	}
	a.dispatcher = queue.NewDispatcher(cfg.AMQP.Workers, publisher, logger.For("dispatcher"))

	repos := storage.Repos
	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	fees := domain.FeePolicy{
		InitialDays: cfg.Fees.InitialDays,
		InitialRate: cfg.Fees.InitialRate,
		LaterRate:   cfg.Fees.LaterRate,
	}

	users := service.NewUserService(repos.Users, logger.For("users"))
	a.echo = api.NewRouter(api.Dependencies{
		Auth:    service.NewAuthService(repos.Users, denylist, tokens, logger.For("auth")),
		Catalog: service.NewCatalogService(repos.Genres, repos.Movies, logger.For("catalog")),
		Rentals: service.NewRentalService(repos.Rentals, repos.Movies, a.dispatcher, fees, logger.For("rentals")),
		Users:   users,
		Checks:  checks,
		Cookies: handler.CookieConfig{Secure: cfg.CookieSecure},
		Logger:  logger.For("http"),
	})

	if cfg.Admin.Email != "" {
		admin, err := users.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info().Str("email", admin.Email).Msg("admin account ready")
	}
	return nil
}

// openDenylist uses Redis when REDIS_ADDR is set so that revoked refresh
// tokens are shared across instances.
func (a *App) openDenylist(ctx context.Context, checks map[string]ports.Pinger) (ports.TokenDenylist, error) {
	if a.cfg.Redis.Addr == "" {
		return memory.NewDenylist(), nil
	}
	client, err := redis.Connect(ctx, redis.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	denylist := redis.NewDenylist(client)
	a.closers = append(a.closers, func(context.Context) error { return denylist.Close() })
	checks["redis"] = denylist
	a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("token denylist: redis")
	return denylist, nil
}

// openPublisher sends rental events to RabbitMQ when AMQP_URL is set and
// only logs them otherwise.
func (a *App) openPublisher(checks map[string]ports.Pinger) (ports.RentalEventPublisher, error) {
	if a.cfg.AMQP.URL == "" {
		return queue.NewLogPublisher(logger.For("events")), nil
	}
	publisher := queue.NewAMQPPublisher(a.cfg.AMQP.URL, a.cfg.AMQP.Queue)
	if err := publisher.Connect(); err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return publisher.Close() })
	checks["amqp"] = publisher
	a.log.Info().Str("queue", a.cfg.AMQP.Queue).Msg("rental events: amqp")
	return publisher, nil
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run serves HTTP and delivers rental events until ctx is cancelled, then
// shuts the server down gracefully and lets the dispatcher drain.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + a.cfg.Port
		a.log.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("http server listening")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.dispatcher.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.log.Info().Msg("shutting down http server")
		return a.echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

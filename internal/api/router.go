package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/moviestore/rental-api/internal/api/handler"
	"github.com/moviestore/rental-api/internal/api/middleware"
	"github.com/moviestore/rental-api/internal/core/policy"
	"github.com/moviestore/rental-api/internal/core/ports"

	_ "github.com/moviestore/rental-api/docs"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth    ports.AuthService
	Catalog ports.CatalogService
	Rentals ports.RentalService
	Users   ports.UserService

	// Checks are pinged by the readiness probe.
	Checks  map[string]ports.Pinger
	Cookies handler.CookieConfig
	Logger  zerolog.Logger

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.AddTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/swagger/")
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "movie_rental",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Probes, metrics and docs (no auth required) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health/", health.Liveness)
	e.GET("/health/ready/", health.Readiness)
	e.GET("/metrics/", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	auth := handler.NewAuthHandler(d.Auth, d.Cookies)
	e.POST("/auth/", auth.Login)
	e.PATCH("/auth/", auth.Refresh)
	e.DELETE("/auth/", auth.Logout)

	// --- Protected resources ---
	// Authentication is attached per route so unknown paths stay 404.
	authn := middleware.Authenticate(d.Auth)
	gate := middleware.Authorize

	users := handler.NewUserHandler(d.Users)
	e.GET("/users/", users.List, authn, gate(policy.User, policy.List))
	e.GET("/users/:uuid/", users.Get, authn, gate(policy.User, policy.Retrieve))

	genres := handler.NewGenreHandler(d.Catalog)
	e.GET("/genres/", genres.List, authn, gate(policy.Genre, policy.List))
	e.POST("/genres/", genres.Create, authn, gate(policy.Genre, policy.Create))
	e.GET("/genres/:uuid/", genres.Get, authn, gate(policy.Genre, policy.Retrieve))
	e.PATCH("/genres/:uuid/", genres.Update, authn, gate(policy.Genre, policy.PartialUpdate))
	e.DELETE("/genres/:uuid/", genres.Delete, authn, gate(policy.Genre, policy.Destroy))

	movies := handler.NewMovieHandler(d.Catalog)
	e.GET("/movies/", movies.List, authn, gate(policy.Movie, policy.List))
	e.POST("/movies/", movies.Create, authn, gate(policy.Movie, policy.Create))
	e.GET("/movies/library/", movies.Library, authn, gate(policy.Movie, policy.Library))
	e.GET("/movies/:uuid/", movies.Get, authn, gate(policy.Movie, policy.Retrieve))
	e.PATCH("/movies/:uuid/", movies.Update, authn, gate(policy.Movie, policy.PartialUpdate))
	e.DELETE("/movies/:uuid/", movies.Delete, authn, gate(policy.Movie, policy.Destroy))

	rentals := handler.NewRentalHandler(d.Rentals)
	e.GET("/rentals/", rentals.List, authn, gate(policy.Rental, policy.List))
	e.POST("/rentals/", rentals.Create, authn, gate(policy.Rental, policy.Create))
	e.GET("/rentals/:uuid/", rentals.Get, authn, gate(policy.Rental, policy.Retrieve))
	e.PATCH("/rentals/:uuid/", rentals.Return, authn, gate(policy.Rental, policy.PartialUpdate))
	e.DELETE("/rentals/:uuid/", rentals.Delete, authn, gate(policy.Rental, policy.Destroy))

	return e
}

// requestLogger writes one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/moviestore/rental-api/internal/pkg/config"
)

func TestNew_MemoryBackendBootstrapsAdmin(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.LoadWith(ctx, envconfig.MapLookuper(map[string]string{
		"ADMIN_EMAIL":    "Root@Example.com",
		"ADMIN_PASSWORD": "changeme",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	a, err := New(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close(ctx)

	req := httptest.NewRequest(http.MethodPost, "/auth/", strings.NewReader(`{"email":"root@example.com","password":"changeme"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}
}

func TestOpenStorage_MemoryHasNoCloser(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}}
	s, err := OpenStorage(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Pinger.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

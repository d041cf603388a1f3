package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "malformed body"), http.StatusBadRequest, "parse_error"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "not_authenticated"},
		{"invalid token", domain.NewInvalidAccessToken("expired"), http.StatusUnauthorized, "invalid_token"},
		{"inactive account", domain.ErrAccountInactive, http.StatusUnauthorized, "authentication_failed"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"forbidden", domain.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"wrapped not found", fmt.Errorf("load: %w", domain.ErrMovieNotFound), http.StatusNotFound, "not_found"},
		{"field", domain.NewValidationError("name", "This field may not be blank."), http.StatusBadRequest, "validation_error"},
		{"unknown genre", &domain.UnknownGenreError{Names: []string{"Noir"}}, http.StatusBadRequest, "unknown_genre"},
		{"duplicate genre", domain.ErrDuplicateGenreName, http.StatusBadRequest, "duplicate_name"},
		{"already rented", domain.ErrAlreadyRented, http.StatusBadRequest, "already_rented"},
		{"already returned", domain.ErrAlreadyReturned, http.StatusBadRequest, "already_returned"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/movies/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, body.Code)
			}
			if body.Detail == "" {
				t.Fatalf("expected a detail message")
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("pq: password authentication failed"), c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Detail != "A server error occurred." {
		t.Fatalf("internal detail leaked: %q", body.Detail)
	}
}

func TestHTTPErrorHandler_ValidationMessages(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/movies/", nil), rec)

	err := domain.ValidationErrors{
		domain.NewValidationError("title", "This field is required."),
		domain.NewValidationError("year", "This field is required."),
	}
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body struct {
		Code     string         `json:"code"`
		Messages []fieldMessage `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Messages) != 2 || body.Messages[0].Field != "title" || body.Messages[1].Field != "year" {
		t.Fatalf("unexpected messages: %+v", body.Messages)
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/movies/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrMovieNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

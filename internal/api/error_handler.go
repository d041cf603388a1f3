package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/api/metrics"
	"github.com/moviestore/rental-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Messages any    `json:"messages,omitempty"`
}

type fieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes, counts auth failures and rental conflicts, and logs
// unexpected errors without leaking them to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, unknown routes, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: httpErrorCode(he.Code), Detail: fmt.Sprintf("%v", he.Message)}
	}

	var (
		invalidToken *domain.InvalidTokenError
		authFailed   *domain.AuthenticationFailedError
		invalidField *domain.ValidationError
		invalidForm  domain.ValidationErrors
		unknownGenre *domain.UnknownGenreError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		metrics.AuthFailuresTotal.WithLabelValues("unauthenticated").Inc()
		return http.StatusUnauthorized, errorResponse{Code: "not_authenticated", Detail: "Authentication credentials were not provided."}
	case errors.As(err, &invalidToken):
		metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
		body := errorResponse{Code: "invalid_token", Detail: invalidToken.Detail}
		if len(invalidToken.Messages) > 0 {
			body.Messages = invalidToken.Messages
		}
		return http.StatusUnauthorized, body
	case errors.As(err, &authFailed):
		metrics.AuthFailuresTotal.WithLabelValues("account").Inc()
		return http.StatusUnauthorized, errorResponse{Code: "authentication_failed", Detail: authFailed.Detail}
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.AuthFailuresTotal.WithLabelValues("invalid_credentials").Inc()
		return http.StatusUnauthorized, errorResponse{Code: "invalid_credentials", Detail: "No active account found with the given credentials."}
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, errorResponse{Code: "permission_denied", Detail: "You do not have permission to perform this action."}
	case domain.IsNotFound(err):
		return http.StatusNotFound, errorResponse{Code: "not_found", Detail: "Not found."}
	case errors.As(err, &invalidForm):
		msgs := make([]fieldMessage, 0, len(invalidForm))
		for _, f := range invalidForm {
			msgs = append(msgs, fieldMessage{Field: f.Field, Message: f.Message})
		}
		return http.StatusBadRequest, errorResponse{Code: "validation_error", Detail: "Invalid input.", Messages: msgs}
	case errors.As(err, &invalidField):
		return http.StatusBadRequest, errorResponse{
			Code:     "validation_error",
			Detail:   "Invalid input.",
			Messages: []fieldMessage{{Field: invalidField.Field, Message: invalidField.Message}},
		}
	case errors.As(err, &unknownGenre):
		msgs := make([]fieldMessage, 0, len(unknownGenre.Names))
		for _, n := range unknownGenre.Names {
			msgs = append(msgs, fieldMessage{Field: "genres", Message: fmt.Sprintf("Object with name=%s does not exist.", n)})
		}
		return http.StatusBadRequest, errorResponse{Code: "unknown_genre", Detail: "Unknown genre.", Messages: msgs}
	case errors.Is(err, domain.ErrDuplicateGenreName):
		return http.StatusBadRequest, errorResponse{Code: "duplicate_name", Detail: "Genre with this name already exists."}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, errorResponse{Code: "duplicate_email", Detail: "User with this email already exists."}
	case errors.Is(err, domain.ErrAlreadyRented):
		metrics.RentalConflictsTotal.WithLabelValues("already_rented").Inc()
		return http.StatusBadRequest, errorResponse{Code: "already_rented", Detail: "This movie is already rented."}
	case errors.Is(err, domain.ErrAlreadyReturned):
		metrics.RentalConflictsTotal.WithLabelValues("already_returned").Inc()
		return http.StatusBadRequest, errorResponse{Code: "already_returned", Detail: "This movie is already returned."}
	case errors.Is(err, domain.ErrInvalidTransition):
		metrics.RentalConflictsTotal.WithLabelValues("invalid_transition").Inc()
		return http.StatusBadRequest, errorResponse{Code: "invalid_transition", Detail: "A rental can only be marked as returned."}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Code: "internal_error", Detail: "A server error occurred."}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "parse_error"
	case http.StatusUnauthorized:
		return "not_authenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "error"
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrPermissionDenied   = errors.New("you do not have permission to perform this action")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")

	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrGenreNotFound  = errors.New("genre not found")
	ErrMovieNotFound  = errors.New("movie not found")
	ErrRentalNotFound = errors.New("rental not found")

	ErrDuplicateGenreName = errors.New("genre with this name already exists")
	ErrAlreadyRented      = errors.New("this movie is already rented")
	ErrAlreadyReturned    = errors.New("this movie is already returned")
	ErrInvalidTransition  = errors.New("a rental can only be marked as returned")
)

// IsNotFound reports whether err is one of the lookup misses.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrGenreNotFound) ||
		errors.Is(err, ErrMovieNotFound) ||
		errors.Is(err, ErrRentalNotFound)
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors groups every rejected field of one request.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// UnknownGenreError is returned when a movie references genre names that do not exist.
type UnknownGenreError struct {
	Names []string
}

func (e *UnknownGenreError) Error() string {
	return fmt.Sprintf("unknown genres: %v", e.Names)
}

// TokenMessage describes why a single token class was rejected.
type TokenMessage struct {
	TokenClass string `json:"token_class"`
	TokenType  string `json:"token_type"`
	Message    string `json:"message"`
}

// InvalidTokenError is returned when presented credentials cannot be validated.
type InvalidTokenError struct {
	Detail   string
	Messages []TokenMessage
}

func (e *InvalidTokenError) Error() string {
	return e.Detail
}

// NewInvalidAccessToken builds the error reported for a rejected access token.
func NewInvalidAccessToken(reason string) *InvalidTokenError {
	return &InvalidTokenError{
		Detail: "Given token not valid for any token type",
		Messages: []TokenMessage{{
			TokenClass: "AccessToken",
			TokenType:  "access",
			Message:    reason,
		}},
	}
}

// AuthenticationFailedError is returned when a valid token names an unusable account.
type AuthenticationFailedError struct {
	Code   string
	Detail string
}

func (e *AuthenticationFailedError) Error() string {
	return e.Detail
}

var (
	ErrAccountNotFound = &AuthenticationFailedError{Code: "user_not_found", Detail: "User not found"}
	ErrAccountInactive = &AuthenticationFailedError{Code: "user_inactive", Detail: "User is inactive"}
)

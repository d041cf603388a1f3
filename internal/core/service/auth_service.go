package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

// AuthService implements login, refresh, logout and credential resolution.
type AuthService struct {
	users    ports.UserRepository
	denylist ports.TokenDenylist
	tokens   *TokenIssuer
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, denylist ports.TokenDenylist, tokens *TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		denylist: denylist,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccess(user.UUID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user.UUID)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.UUID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("login: update last_login: %w", err)
	}

	s.log.Info().Str("user", user.UUID).Msg("user logged in")
	return &ports.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) Refresh(ctx context.Context, raw string) (*ports.IssuedToken, error) {
	claims, err := s.parseRefresh(ctx, raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.activeUser(ctx, claims.Subject); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(claims.Subject)
	if err != nil {
		return nil, err
	}
	return &access, nil
}

// Logout revokes the refresh token. An empty or already invalid token is not an error.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	claims, err := s.tokens.Parse(raw, tokenTypeRefresh)
	if err != nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user", claims.Subject).Msg("refresh token revoked")
	return nil
}

// Resolve maps a raw access token to the actor it identifies.
func (s *AuthService) Resolve(ctx context.Context, raw string) (*domain.Actor, error) {
	if raw == "" {
		return nil, nil
	}

	claims, err := s.tokens.Parse(raw, tokenTypeAccess)
	if err != nil {
		return nil, domain.NewInvalidAccessToken(err.Error())
	}

	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return domain.NewActor(user), nil
}

func (s *AuthService) parseRefresh(ctx context.Context, raw string) (*tokenClaims, error) {
	if raw == "" {
		return nil, domain.NewValidationError("refresh", "This field is required.")
	}
	claims, err := s.tokens.Parse(raw, tokenTypeRefresh)
	if err != nil {
		return nil, &domain.InvalidTokenError{Detail: err.Error()}
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh: denylist: %w", err)
	}
	if revoked {
		return nil, &domain.InvalidTokenError{Detail: "Token is blacklisted"}
	}
	return claims, nil
}

func (s *AuthService) activeUser(ctx context.Context, subject string) (*domain.User, error) {
	if subject == "" {
		return nil, &domain.InvalidTokenError{Detail: "Token contained no recognizable user identification"}
	}

	user, err := s.users.FindByUUID(ctx, subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return user, nil
}

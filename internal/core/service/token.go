package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/moviestore/rental-api/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 5 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

var (
	errTokenInvalid   = errors.New("Token is invalid or expired")
	errTokenWrongType = errors.New("Token has wrong type")
)

// tokenClaims is the JWT payload. Subject carries the user uuid.
type tokenClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) IssueAccess(userUUID string) (ports.IssuedToken, error) {
	return t.issue(userUUID, tokenTypeAccess, t.accessTTL)
}

func (t *TokenIssuer) IssueRefresh(userUUID string) (ports.IssuedToken, error) {
	return t.issue(userUUID, tokenTypeRefresh, t.refreshTTL)
}

func (t *TokenIssuer) issue(subject, tokenType string, ttl time.Duration) (ports.IssuedToken, error) {
	now := t.now()
	exp := now.Add(ttl)
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return ports.IssuedToken{Token: signed, ExpiresAt: exp}, nil
}

// Parse verifies signature, expiry and token type.
// The returned error message is safe to show to clients.
func (t *TokenIssuer) Parse(raw, tokenType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errTokenInvalid
	}
	if claims.TokenType != tokenType {
		return nil, errTokenWrongType
	}
	return claims, nil
}

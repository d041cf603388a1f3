package ports

import (
	"context"
	"time"

	"github.com/moviestore/rental-api/internal/core/domain"
)

// IssuedToken is a signed token and the moment it stops being valid.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// IdentityResolver turns a raw credential into an actor.
// An empty credential resolves to a nil actor and no error.
type IdentityResolver interface {
	Resolve(ctx context.Context, raw string) (*domain.Actor, error)
}

type AuthService interface {
	IdentityResolver
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refresh string) (*IssuedToken, error)
	Logout(ctx context.Context, refresh string) error
}

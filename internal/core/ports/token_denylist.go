package ports

import (
	"context"
	"time"
)

// TokenDenylist records revoked token ids until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:refresh:"

// Denylist stores revoked refresh-token ids as keys that expire together
// with the token, so no sweeping is needed.
// Key format: denylist:refresh:<jti>
type Denylist struct {
	client *redis.Client
	now    func() time.Time
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client, now: time.Now}
}

// Revoke is a no-op for tokens that have already expired.
func (d *Denylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (d *Denylist) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

func (d *Denylist) Close() error {
	return d.client.Close()
}

func denylistKey(jti string) string {
	return denylistPrefix + jti
}

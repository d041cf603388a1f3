package memory

import (
	"context"
	"sync"
	"time"
)

// Denylist is the in-process token denylist used when Redis is not configured.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *Denylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweep()
	d.revoked[jti] = until
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.revoked[jti]
	return ok && d.now().Before(until), nil
}

// sweep drops expired entries. Caller holds d.mu.
func (d *Denylist) sweep() {
	now := d.now()
	for jti, until := range d.revoked {
		if !now.Before(until) {
			delete(d.revoked, jti)
		}
	}
}

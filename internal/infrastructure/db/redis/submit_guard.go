package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stafull/auth-portal/internal/core/ports"
)

const defaultSubmitTTL = 30 * time.Second

// SubmitGuard is the per-session loading flag backed by SETNX. The TTL frees
// the flag if the process dies mid-request.
// Key format: submit:<sid>
type SubmitGuard struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SubmitGuard = (*SubmitGuard)(nil)

// NewSubmitGuard creates a SubmitGuard. A zero ttl means 30s.
func NewSubmitGuard(client *redis.Client, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = defaultSubmitTTL
	}
	return &SubmitGuard{client: client, ttl: ttl}
}

// Acquire sets the flag unless it is already held.
func (g *SubmitGuard) Acquire(ctx context.Context, sid string) (bool, error) {
	ok, err := g.client.SetNX(ctx, submitKey(sid), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submit guard acquire: %w", err)
	}
	return ok, nil
}

func (g *SubmitGuard) Release(ctx context.Context, sid string) error {
	return g.client.Del(ctx, submitKey(sid)).Err()
}

// Held reports whether a request for sid is in flight.
func (g *SubmitGuard) Held(ctx context.Context, sid string) (bool, error) {
	n, err := g.client.Exists(ctx, submitKey(sid)).Result()
	if err != nil {
		return false, fmt.Errorf("submit guard check: %w", err)
	}
	return n > 0, nil
}

func submitKey(sid string) string {
	return "submit:" + sid
}

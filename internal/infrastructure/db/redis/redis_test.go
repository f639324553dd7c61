package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

func TestSessionCodec_RoundTripKeepsFields(t *testing.T) {
	in := ports.StoredSession{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleDriver, EmailVerified: true},
		ExpiresAt:    time.Unix(1_800_000_000, 0).UTC(),
	}
	fields, err := encodeSession(in)
	if err != nil {
		t.Fatalf("encodeSession: %v", err)
	}
	for _, name := range []string{fieldToken, fieldRefreshToken, fieldUser} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("missing hash field %q", name)
		}
	}

	flat := make(map[string]string, len(fields))
	for k, v := range fields {
		flat[k] = v.(string)
	}
	out, err := decodeSession(flat)
	if err != nil {
		t.Fatalf("decodeSession: %v", err)
	}
	if out.User != in.User || out.AccessToken != in.AccessToken || !out.ExpiresAt.Equal(in.ExpiresAt) {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}
}

func TestDecodeSession_MissingUser(t *testing.T) {
	if _, err := decodeSession(map[string]string{fieldToken: "x"}); err == nil {
		t.Fatalf("expected error for hash without user field")
	}
}

// The tests below need a live Redis; set REDIS_TEST_ADDR to run them.
func liveConfig(t *testing.T) Config {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	return Config{Addr: addr, DB: 15}
}

func TestSessionStore_Live(t *testing.T) {
	cfg := liveConfig(t)
	ctx := context.Background()
	client, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := NewSessionStore(client)
	sid := uuid.NewString()

	if got, err := store.Get(ctx, sid); err != nil || got != nil {
		t.Fatalf("expected missing session, got %+v %v", got, err)
	}
	sess := ports.StoredSession{AccessToken: "a", User: domain.User{ID: "u1"}, ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Save(ctx, sid, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ttl, err := client.TTL(ctx, sessionKey(sid)).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("expected positive TTL, got %v %v", ttl, err)
	}
	if err := store.Delete(ctx, sid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sid); got != nil {
		t.Fatalf("expected session gone after Delete")
	}
}

func TestSubmitGuard_Live(t *testing.T) {
	cfg := liveConfig(t)
	ctx := context.Background()
	client, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	guard := NewSubmitGuard(client, time.Second)
	sid := uuid.NewString()

	if ok, err := guard.Acquire(ctx, sid); err != nil || !ok {
		t.Fatalf("first Acquire = %v, %v", ok, err)
	}
	if ok, _ := guard.Acquire(ctx, sid); ok {
		t.Fatalf("second Acquire must fail while held")
	}
	if held, _ := guard.Held(ctx, sid); !held {
		t.Fatalf("expected Held")
	}
	if err := guard.Release(ctx, sid); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ok, _ := guard.Acquire(ctx, sid); !ok {
		t.Fatalf("Acquire after Release must succeed")
	}
	_ = guard.Release(ctx, sid)
}

func TestDriverStateStore_Live(t *testing.T) {
	cfg := liveConfig(t)
	ctx := context.Background()
	client, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := NewDriverStateStore(client)
	id := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, driverKey(id)) })

	if got, err := store.Get(ctx, id); err != nil || got != nil {
		t.Fatalf("expected no state, got %+v %v", got, err)
	}
	state := domain.NewDriverState(id, domain.Stop{Name: "Stop"}, time.Now().UTC())
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil || got == nil || got.Mode != domain.ModeDashboard || len(got.Checklist) != 5 {
		t.Fatalf("unexpected state %+v %v", got, err)
	}
}

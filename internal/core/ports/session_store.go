package ports

import (
	"context"
	"time"

	"github.com/stafull/auth-portal/internal/core/domain"
)

// StoredSession is the server-side record behind a session cookie.
type StoredSession struct {
	AccessToken  string
	RefreshToken string
	User         domain.User
	ExpiresAt    time.Time
}

// SessionStore persists sessions by session ID. Get returns (nil, nil) for a
// missing or expired session.
type SessionStore interface {
	Get(ctx context.Context, sid string) (*StoredSession, error)
	Save(ctx context.Context, sid string, session StoredSession) error
	Delete(ctx context.Context, sid string) error
}

// SubmitGuard is the per-session loading flag. Acquire returns false when
// another auth call for the same session is still in flight.
type SubmitGuard interface {
	Acquire(ctx context.Context, sid string) (bool, error)
	Release(ctx context.Context, sid string) error
	Held(ctx context.Context, sid string) (bool, error)
}

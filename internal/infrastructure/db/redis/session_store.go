package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// Hash field names of a stored session.
const (
	fieldToken        = "token"
	fieldRefreshToken = "refreshToken"
	fieldUser         = "user"
	fieldExpiresAt    = "expiresAt"
)

// SessionStore keeps sessions as Redis hashes that expire with the access
// token.
// Key format: session:<sid>
type SessionStore struct {
	client *redis.Client
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Get returns (nil, nil) when the session does not exist.
func (s *SessionStore) Get(ctx context.Context, sid string) (*ports.StoredSession, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeSession(fields)
}

// Save replaces the session and sets its expiry to ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sid string, session ports.StoredSession) error {
	fields, err := encodeSession(session)
	if err != nil {
		return err
	}
	key := sessionKey(sid)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if !session.ExpiresAt.IsZero() {
			pipe.ExpireAt(ctx, key, session.ExpiresAt)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func sessionKey(sid string) string {
	return "session:" + sid
}

func encodeSession(s ports.StoredSession) (map[string]any, error) {
	user, err := json.Marshal(s.User)
	if err != nil {
		return nil, fmt.Errorf("session encode user: %w", err)
	}
	fields := map[string]any{
		fieldToken:        s.AccessToken,
		fieldRefreshToken: s.RefreshToken,
		fieldUser:         string(user),
	}
	if !s.ExpiresAt.IsZero() {
		fields[fieldExpiresAt] = strconv.FormatInt(s.ExpiresAt.Unix(), 10)
	}
	return fields, nil
}

func decodeSession(fields map[string]string) (*ports.StoredSession, error) {
	raw, ok := fields[fieldUser]
	if !ok {
		return nil, errors.New("session decode: missing user field")
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("session decode user: %w", err)
	}

	out := &ports.StoredSession{
		AccessToken:  fields[fieldToken],
		RefreshToken: fields[fieldRefreshToken],
		User:         user,
	}
	if v := fields[fieldExpiresAt]; v != "" {
		unix, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("session decode expiry: %w", err)
		}
		out.ExpiresAt = time.Unix(unix, 0).UTC()
	}
	return out, nil
}

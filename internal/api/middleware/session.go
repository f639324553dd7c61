package middleware

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/hkdf"
)

const (
	ctxSessionID = "sid"
	ctxUser      = "user"
	ctxRole      = "role"
	ctxCookie    = "session_cookie"

	cookieKeyInfo = "stafull session cookie v1"
	cookieIssuer  = "stafull-auth"
)

// SessionConfig configures the browser session cookie.
type SessionConfig struct {
	Secret     string
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// SessionCookie issues and verifies the signed session cookie. The cookie is
// an HS256 JWT whose ID claim is the session ID; the signing key is derived
// from the configured secret with HKDF-SHA256.
type SessionCookie struct {
	cfg SessionConfig
	key []byte
	now func() time.Time
}

// NewSessionCookie derives the signing key from cfg.Secret.
func NewSessionCookie(cfg SessionConfig) (*SessionCookie, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session: secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "stafull_sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	key, err := deriveKey(cfg.Secret)
	if err != nil {
		return nil, err
	}
	return &SessionCookie{cfg: cfg, key: key, now: time.Now}, nil
}

func deriveKey(secret string) ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo))
	out := make([]byte, 32)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}
	return out, nil
}

// Middleware puts the session ID in the context, issuing a new one when the
// cookie is missing, forged or expired. Cookies past half their lifetime are
// re-signed with the same ID.
func (s *SessionCookie) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var (
				sid    string
				expiry time.Time
			)
			if ck, err := c.Cookie(s.cfg.CookieName); err == nil {
				sid, expiry, _ = s.Parse(ck.Value)
			}

			switch {
			case sid == "":
				sid = uuid.NewString()
				if err := s.issue(c, sid); err != nil {
					return err
				}
			case expiry.Sub(s.now()) < s.cfg.TTL/2:
				if err := s.issue(c, sid); err != nil {
					return err
				}
			}

			c.Set(ctxSessionID, sid)
			c.Set(ctxCookie, s)
			return next(c)
		}
	}
}

// RotateSession gives the request a fresh session ID once the visitor has
// signed in. move transfers the server-side session; the new cookie is issued
// only when it succeeds. Outside the session middleware it does nothing.
func RotateSession(c echo.Context, move func(oldSID, newSID string) error) error {
	s, ok := c.Get(ctxCookie).(*SessionCookie)
	oldSID, _ := c.Get(ctxSessionID).(string)
	if !ok || oldSID == "" {
		return nil
	}

	newSID := uuid.NewString()
	if err := move(oldSID, newSID); err != nil {
		return fmt.Errorf("session: rotate: %w", err)
	}
	if err := s.issue(c, newSID); err != nil {
		return err
	}
	c.Set(ctxSessionID, newSID)
	return nil
}

// Sign returns the cookie value for sid.
func (s *SessionCookie) Sign(sid string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        sid,
		Issuer:    cookieIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies a cookie value and returns its session ID and expiry.
func (s *SessionCookie) Parse(value string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	},
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return "", time.Time{}, fmt.Errorf("session: invalid cookie: %w", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", time.Time{}, fmt.Errorf("session: invalid session id: %w", err)
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}

func (s *SessionCookie) issue(c echo.Context, sid string) error {
	value, err := s.Sign(sid)
	if err != nil {
		return fmt.Errorf("session: sign cookie: %w", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// RequireReady admits sessions that are signed in, verified and have accepted
// the terms, and injects the user and role into the context. It must run
// after the session middleware.
func RequireReady(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(ctxSessionID).(string)
			if sid == "" {
				return domain.ErrNotAuthenticated
			}

			session, err := auth.Snapshot(c.Request().Context(), sid)
			if err != nil {
				return err
			}
			user := session.User
			switch {
			case user == nil:
				return domain.ErrNotAuthenticated
			case !user.EmailVerified || !user.TermsAccepted:
				return domain.ErrSessionNotReady
			}

			c.Set(ctxUser, user)
			c.Set(ctxRole, string(user.Role))

			return next(c)
		}
	}
}

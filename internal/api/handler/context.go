package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stafull/auth-portal/internal/core/domain"
)

// Context keys set by the session and auth middleware.
const (
	ContextSessionID = "sid"
	ContextUser      = "user"
	ContextCSRF      = "csrf"
)

// sessionID returns the browser session ID issued by the session middleware.
func sessionID(c echo.Context) string {
	sid, _ := c.Get(ContextSessionID).(string)
	return sid
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(ContextCSRF).(string)
	return token
}

// ctxUser extracts the user injected by RequireReady and performs a
// fast-fail check before any service call.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(ContextUser).(*domain.User)
	if user == nil || user.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// driverIDFor resolves whose driver state a request addresses. Drivers only
// ever see their own; franchise staff and HQ may pass ?driver_id=.
func driverIDFor(c echo.Context) (string, error) {
	user, err := ctxUser(c)
	if err != nil {
		return "", err
	}
	if user.Role == domain.RoleDriver {
		return user.ID, nil
	}
	if id := c.QueryParam("driver_id"); id != "" {
		return id, nil
	}
	return user.ID, nil
}

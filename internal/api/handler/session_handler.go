package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// SessionHandler exposes the browser session to the portals as JSON.
type SessionHandler struct {
	auth       ports.AuthService
	warnBefore time.Duration
	now        func() time.Time
}

func NewSessionHandler(auth ports.AuthService, warnBefore time.Duration) *SessionHandler {
	return &SessionHandler{auth: auth, warnBefore: warnBefore, now: time.Now}
}

// Get returns the current session state and routing decision.
//
// @Summary      Current session
// @Description  Reports the auth state of the caller's session cookie, where the gateway would send it, and whether the session is about to expire.
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	session, err := h.auth.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	action := domain.Decide(session, h.auth.Portals())

	resp := sessionResponse{
		State:    string(action.State),
		Action:   string(action.Kind),
		Target:   action.Target,
		Expiring: session.ExpiresWithin(h.now(), h.warnBefore),
	}
	if u := session.User; u != nil {
		resp.User = &sessionUser{
			ID:            u.ID,
			Email:         u.Email,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			Role:          string(u.Role),
			EmailVerified: u.EmailVerified,
			TermsAccepted: u.TermsAccepted,
		}
	}
	if !session.ExpiresAt.IsZero() {
		resp.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

package ports

import (
	"context"

	"github.com/stafull/auth-portal/internal/core/domain"
)

// AuthService is the session holder used by the page handlers. Every
// mutating call returns the decision for the session after the mutation.
type AuthService interface {
	Snapshot(ctx context.Context, sid string) (domain.AuthSession, error)
	Portals() domain.PortalRoutes

	Login(ctx context.Context, sid, email, password string) (domain.Action, error)
	Register(ctx context.Context, sid string, input RegisterInput) (domain.Action, error)
	VerifyEmail(ctx context.Context, sid, email, code string) (domain.Action, error)
	AcceptTerms(ctx context.Context, sid string) (domain.Action, error)
	Logout(ctx context.Context, sid string) error

	// RotateSession moves the session held under oldSID to newSID.
	RotateSession(ctx context.Context, oldSID, newSID string) error

	// These always succeed for unknown emails.
	ResendVerification(ctx context.Context, sid, email string) error
	RequestPasswordReset(ctx context.Context, sid, email string) error

	ResetPassword(ctx context.Context, sid, token, newPassword string) error
}

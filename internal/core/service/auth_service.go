package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/api/metrics"
	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// MinPasswordLength is enforced on sign-up and password reset.
const MinPasswordLength = 8

// Operation names used in logs and metrics.
const (
	opLogin              = "login"
	opRegister           = "register"
	opVerifyEmail        = "verify_email"
	opResendVerification = "resend_verification"
	opRequestReset       = "request_reset"
	opResetPassword      = "reset_password"
	opAcceptTerms        = "accept_terms"
)

// AuthGateway holds every browser session and delegates account operations to
// the auth API. After each mutation it answers with the routing decision for
// the session.
type AuthGateway struct {
	client     ports.AuthClient
	store      ports.SessionStore
	guard      ports.SubmitGuard
	portals    domain.PortalRoutes
	sessionTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// NewAuthGateway returns the session holder. sessionTTL applies when the
// access token carries no readable exp claim.
func NewAuthGateway(
	client ports.AuthClient,
	store ports.SessionStore,
	guard ports.SubmitGuard,
	portals domain.PortalRoutes,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *AuthGateway {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthGateway{
		client:     client,
		store:      store,
		guard:      guard,
		portals:    portals,
		sessionTTL: sessionTTL,
		log:        log,
		now:        time.Now,
	}
}

var _ ports.AuthService = (*AuthGateway)(nil)

// Portals returns the role to portal mapping in use.
func (g *AuthGateway) Portals() domain.PortalRoutes {
	return g.portals
}

// Snapshot reads the current state of session sid. A missing or expired
// session is anonymous.
func (g *AuthGateway) Snapshot(ctx context.Context, sid string) (domain.AuthSession, error) {
	var session domain.AuthSession

	held, err := g.guard.Held(ctx, sid)
	if err != nil {
		g.log.Warn().Err(err).Str("sid", sid).Msg("submit guard check failed, assuming idle")
	}
	session.Loading = held

	stored, err := g.store.Get(ctx, sid)
	if err != nil {
		return session, err
	}
	if stored == nil || (!stored.ExpiresAt.IsZero() && !stored.ExpiresAt.After(g.now())) {
		return session, nil
	}
	user := stored.User
	session.User = &user
	session.ExpiresAt = stored.ExpiresAt
	return session, nil
}

// Login authenticates with the auth API. On failure the session is left as
// it was.
func (g *AuthGateway) Login(ctx context.Context, sid, email, password string) (domain.Action, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Action{}, g.reject(opLogin, domain.NewValidationError("email", "Please enter your email and password"))
	}

	var session domain.AuthSession
	err := g.guarded(ctx, sid, opLogin, func() error {
		res, err := g.call(opLogin, func() (*ports.AuthResult, error) {
			return g.client.Login(ctx, email, password)
		})
		if err != nil {
			return err
		}
		stored := g.newStoredSession(res)
		if err := g.store.Save(ctx, sid, stored); err != nil {
			return err
		}
		session = domain.AuthSession{User: &stored.User, ExpiresAt: stored.ExpiresAt}
		return nil
	})
	if err != nil {
		return domain.Action{}, err
	}

	g.log.Info().Str("user_id", session.User.ID).Str("role", string(session.User.Role)).Msg("user signed in")
	return g.decide(session), nil
}

// Register creates the account. The new user is held in the session as
// unverified, so the decision always points at /verify.
func (g *AuthGateway) Register(ctx context.Context, sid string, in ports.RegisterInput) (domain.Action, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.FirstName == "":
		return domain.Action{}, g.reject(opRegister, domain.NewValidationError("firstName", "First name is required"))
	case in.LastName == "":
		return domain.Action{}, g.reject(opRegister, domain.NewValidationError("lastName", "Last name is required"))
	case in.Email == "":
		return domain.Action{}, g.reject(opRegister, domain.NewValidationError("email", "Email is required"))
	case len(in.Password) < MinPasswordLength:
		return domain.Action{}, g.reject(opRegister, domain.NewValidationError("password", "Password must be at least 8 characters"))
	}

	var session domain.AuthSession
	err := g.guarded(ctx, sid, opRegister, func() error {
		res, err := g.call(opRegister, func() (*ports.AuthResult, error) {
			return g.client.Register(ctx, in)
		})
		if err != nil {
			return err
		}
		if res.User.Email == "" {
			res.User.Email = in.Email
		}
		if res.User.FirstName == "" {
			res.User.FirstName = in.FirstName
		}
		if res.User.LastName == "" {
			res.User.LastName = in.LastName
		}
		// A fresh account has verified nothing, whatever the response says.
		res.User.EmailVerified = false
		res.User.TermsAccepted = false

		stored := g.newStoredSession(res)
		if err := g.store.Save(ctx, sid, stored); err != nil {
			return err
		}
		session = domain.AuthSession{User: &stored.User, ExpiresAt: stored.ExpiresAt}
		return nil
	})
	if err != nil {
		return domain.Action{}, err
	}

	g.log.Info().Str("email", in.Email).Msg("account registered")
	return g.decide(session), nil
}

// VerifyEmail submits the 6-digit code. email may be empty when the session
// already holds the user; a different email than the session's is rejected
// before any call. With no session the code is still checked and the
// decision sends the visitor to sign in.
func (g *AuthGateway) VerifyEmail(ctx context.Context, sid, email, code string) (domain.Action, error) {
	code = domain.StripNonDigits(code)
	if len(code) != domain.CodeLength {
		return domain.Action{}, g.reject(opVerifyEmail, domain.NewValidationError("code", "Please enter the 6-digit code"))
	}

	stored, err := g.store.Get(ctx, sid)
	if err != nil {
		return domain.Action{}, err
	}
	email = strings.TrimSpace(email)
	if stored != nil {
		if email != "" && !strings.EqualFold(email, stored.User.Email) {
			return domain.Action{}, g.reject(opVerifyEmail, domain.NewValidationError("email", "This code does not belong to the account you are signed in with"))
		}
		email = stored.User.Email
	}
	if email == "" {
		return domain.Action{}, g.reject(opVerifyEmail, domain.ErrNotAuthenticated)
	}

	var session domain.AuthSession
	err = g.guarded(ctx, sid, opVerifyEmail, func() error {
		if err := g.callErr(opVerifyEmail, func() error {
			return g.client.VerifyEmail(ctx, email, code)
		}); err != nil {
			return err
		}
		if stored == nil {
			return nil
		}
		session = domain.AuthSession{User: &stored.User, ExpiresAt: stored.ExpiresAt}
		stored.User.MarkEmailVerified()
		return g.store.Save(ctx, sid, *stored)
	})
	if err != nil {
		return domain.Action{}, err
	}

	g.log.Info().Str("email", email).Msg("email verified")
	return g.decide(session), nil
}

// AcceptTerms records acceptance with the auth API and flips the flag. An
// unverified session is not sent upstream; it is routed back to /verify.
func (g *AuthGateway) AcceptTerms(ctx context.Context, sid string) (domain.Action, error) {
	stored, err := g.store.Get(ctx, sid)
	if err != nil {
		return domain.Action{}, err
	}
	if stored == nil {
		return domain.Action{}, g.reject(opAcceptTerms, domain.ErrNotAuthenticated)
	}
	if !stored.User.EmailVerified || stored.User.TermsAccepted {
		return g.decide(domain.AuthSession{User: &stored.User, ExpiresAt: stored.ExpiresAt}), nil
	}

	err = g.guarded(ctx, sid, opAcceptTerms, func() error {
		if err := g.callErr(opAcceptTerms, func() error {
			return g.client.AcceptTerms(ctx, stored.AccessToken)
		}); err != nil {
			return err
		}
		stored.User.MarkTermsAccepted()
		return g.store.Save(ctx, sid, *stored)
	})
	if err != nil {
		return domain.Action{}, err
	}

	g.log.Info().Str("user_id", stored.User.ID).Msg("terms accepted")
	return g.decide(domain.AuthSession{User: &stored.User, ExpiresAt: stored.ExpiresAt}), nil
}

// Logout discards the session. It is idempotent.
func (g *AuthGateway) Logout(ctx context.Context, sid string) error {
	if err := g.store.Delete(ctx, sid); err != nil {
		return err
	}
	g.log.Info().Str("sid", sid).Msg("session cleared")
	return nil
}

// RotateSession moves the stored session from oldSID to newSID and drops
// oldSID. A missing session only drops oldSID.
func (g *AuthGateway) RotateSession(ctx context.Context, oldSID, newSID string) error {
	stored, err := g.store.Get(ctx, oldSID)
	if err != nil {
		return err
	}
	if stored != nil {
		if err := g.store.Save(ctx, newSID, *stored); err != nil {
			return err
		}
	}
	return g.store.Delete(ctx, oldSID)
}

// ResendVerification asks for a new code. Rejections from the auth API are
// not surfaced so the response never reveals whether the email exists.
func (g *AuthGateway) ResendVerification(ctx context.Context, sid, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		stored, err := g.store.Get(ctx, sid)
		if err != nil {
			return err
		}
		if stored != nil {
			email = stored.User.Email
		}
	}
	if email == "" {
		return g.reject(opResendVerification, domain.NewValidationError("email", "Please enter your email address"))
	}

	return g.guarded(ctx, sid, opResendVerification, func() error {
		return g.swallowRejection(opResendVerification, g.callErr(opResendVerification, func() error {
			return g.client.ResendVerification(ctx, email)
		}))
	})
}

// RequestPasswordReset asks the auth API to mail a reset link. Like
// ResendVerification it succeeds for unknown emails.
func (g *AuthGateway) RequestPasswordReset(ctx context.Context, sid, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return g.reject(opRequestReset, domain.NewValidationError("email", "Please enter your email address"))
	}

	return g.guarded(ctx, sid, opRequestReset, func() error {
		return g.swallowRejection(opRequestReset, g.callErr(opRequestReset, func() error {
			return g.client.RequestPasswordReset(ctx, email)
		}))
	})
}

// ResetPassword sets a new password using the token from the reset link.
func (g *AuthGateway) ResetPassword(ctx context.Context, sid, token, newPassword string) error {
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return g.reject(opResetPassword, domain.NewValidationError("token", "This password reset link is invalid or has expired."))
	case newPassword == "":
		return g.reject(opResetPassword, domain.NewValidationError("password", "Please fill in all fields"))
	case len(newPassword) < MinPasswordLength:
		return g.reject(opResetPassword, domain.NewValidationError("password", "Password must be at least 8 characters"))
	}

	return g.guarded(ctx, sid, opResetPassword, func() error {
		return g.callErr(opResetPassword, func() error {
			return g.client.ResetPassword(ctx, token, newPassword)
		})
	})
}

// guarded runs fn with the session's loading flag held. A second call for
// the same session while fn runs fails with ErrRequestInFlight. If the guard
// itself is unavailable fn still runs.
func (g *AuthGateway) guarded(ctx context.Context, sid, op string, fn func() error) error {
	acquired, err := g.guard.Acquire(ctx, sid)
	switch {
	case err != nil:
		g.log.Warn().Err(err).Str("op", op).Str("sid", sid).Msg("submit guard unavailable, proceeding anyway")
	case !acquired:
		metrics.AuthOperationsTotal.WithLabelValues(op, "busy").Inc()
		return domain.ErrRequestInFlight
	default:
		defer func() {
			if relErr := g.guard.Release(context.WithoutCancel(ctx), sid); relErr != nil {
				g.log.Warn().Err(relErr).Str("op", op).Str("sid", sid).Msg("failed to release submit guard")
			}
		}()
	}

	err = fn()
	metrics.AuthOperationsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		ev := g.log.Warn()
		var ae *domain.AuthError
		if errors.As(err, &ae) {
			ev = g.log.Info()
		}
		ev.Err(err).Str("op", op).Msg("auth operation failed")
	}
	return err
}

func (g *AuthGateway) reject(op string, err error) error {
	metrics.AuthOperationsTotal.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func (g *AuthGateway) call(op string, fn func() (*ports.AuthResult, error)) (*ports.AuthResult, error) {
	start := time.Now()
	res, err := fn()
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return res, err
}

func (g *AuthGateway) callErr(op string, fn func() error) error {
	_, err := g.call(op, func() (*ports.AuthResult, error) {
		return nil, fn()
	})
	return err
}

func (g *AuthGateway) swallowRejection(op string, err error) error {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		g.log.Debug().Err(err).Str("op", op).Msg("auth api rejection hidden from caller")
		return nil
	}
	return err
}

func (g *AuthGateway) decide(session domain.AuthSession) domain.Action {
	action := domain.Decide(session, g.portals)
	metrics.DecisionsTotal.WithLabelValues(string(action.State)).Inc()
	return action
}

func (g *AuthGateway) newStoredSession(res *ports.AuthResult) ports.StoredSession {
	return ports.StoredSession{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
		ExpiresAt:    g.tokenExpiry(res.AccessToken),
	}
}

// tokenExpiry reads the exp claim of the upstream access token. The token is
// not verified here; the auth API is the only party that can do that.
func (g *AuthGateway) tokenExpiry(accessToken string) time.Time {
	fallback := g.now().Add(g.sessionTTL)
	if accessToken == "" {
		return fallback
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ve *domain.ValidationError
	var ae *domain.AuthError
	var ne *domain.NetworkError
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ae):
		return "rejected"
	case errors.As(err, &ne):
		return "network"
	case errors.Is(err, domain.ErrRequestInFlight):
		return "busy"
	default:
		return "error"
	}
}

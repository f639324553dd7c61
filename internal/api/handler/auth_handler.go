package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/api/middleware"
	"github.com/stafull/auth-portal/internal/api/view"
	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// Banner texts shown by the auth pages.
const (
	msgNetwork          = "We couldn't reach the server. Please try again."
	msgInFlight         = "A request is already in progress"
	msgSignInRequired   = "Please enter your email and password"
	msgSignInFailed     = "Invalid email or password"
	msgEmailExists      = "An account with this email already exists"
	msgSignUpFailed     = "Registration failed. Please try again."
	msgCodeRequired     = "Please enter the 6-digit code"
	msgCodeInvalid      = "Invalid verification code"
	msgCodeResent       = "A new verification code has been sent to your email"
	msgResendFailed     = "Failed to resend code. Please try again."
	msgEmailRequired    = "Please enter your email address"
	msgResetSendFailed  = "Failed to send reset email. Please try again."
	msgFillAllFields    = "Please fill in all fields"
	msgResetLinkInvalid = "This password reset link is invalid or has expired."
	msgTermsFailed      = "Failed to accept the terms. Please try again."
)

// AuthHandler serves the server-rendered auth pages. Every page reads the
// session through ports.AuthService and never talks to the auth API itself.
type AuthHandler struct {
	auth ports.AuthService
	log  zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Index sends the visitor wherever their session belongs.
func (h *AuthHandler) Index(c echo.Context) error {
	session, err := h.auth.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	ret := c.QueryParam("return")
	action := domain.Decide(session, h.auth.Portals()).WithReturn(ret, h.auth.Portals())
	if action.Kind == domain.ActionShowSignIn && ret != "" {
		action.Target = domain.PathSignIn + "?" + url.Values{"return": {ret}}.Encode()
	}
	return h.follow(c, action)
}

// NotFound redirects unknown paths to the root.
func (h *AuthHandler) NotFound(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/")
}

// ── Sign in ───────────────────────────────────────────────────────────────────

func (h *AuthHandler) SignInPage(c echo.Context) error {
	session, err := h.auth.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	ret := c.QueryParam("return")
	action := domain.Decide(session, h.auth.Portals())
	if action.Kind != domain.ActionShowSignIn {
		return h.follow(c, action.WithReturn(ret, h.auth.Portals()))
	}
	p := view.NewPage("Sign In")
	p.Return = ret
	return h.render(c, http.StatusOK, view.PageSignIn, p)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var form signInForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	ret := c.QueryParam("return")

	p := view.NewPage("Sign In")
	p.Return = ret
	p.Form["email"] = form.Email

	if err := c.Validate(&form); err != nil {
		p.Error = msgSignInRequired
		return h.render(c, http.StatusUnprocessableEntity, view.PageSignIn, p)
	}

	action, err := h.auth.Login(c.Request().Context(), sessionID(c), strings.TrimSpace(form.Email), form.Password)
	if err != nil {
		p.Error = h.banner(err, msgSignInFailed)
		return h.render(c, formStatus(err), view.PageSignIn, p)
	}
	if err := h.rotate(c); err != nil {
		return err
	}
	return h.follow(c, action.WithReturn(ret, h.auth.Portals()))
}

// ── Sign up ───────────────────────────────────────────────────────────────────

func (h *AuthHandler) SignUpPage(c echo.Context) error {
	session, err := h.auth.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	if action := domain.Decide(session, h.auth.Portals()); action.Kind != domain.ActionShowSignIn {
		return h.follow(c, action)
	}
	return h.render(c, http.StatusOK, view.PageSignUp, view.NewPage("Sign Up"))
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var form signUpForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	p := view.NewPage("Sign Up")
	p.Form["firstName"] = form.FirstName
	p.Form["lastName"] = form.LastName
	p.Form["email"] = form.Email
	p.Form["phone"] = form.Phone

	if err := c.Validate(&form); err != nil {
		var fe *FieldErrors
		if !errors.As(err, &fe) {
			return err
		}
		p.FieldErrors = fe.Messages
		return h.render(c, http.StatusUnprocessableEntity, view.PageSignUp, p)
	}

	action, err := h.auth.Register(c.Request().Context(), sessionID(c), ports.RegisterInput{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     strings.TrimSpace(form.Email),
		Password:  form.Password,
		Phone:     strings.TrimSpace(form.Phone),
	})
	if err != nil {
		if domain.IsEmailExists(err) {
			p.FieldErrors["email"] = msgEmailExists
		} else {
			p.Error = h.banner(err, msgSignUpFailed)
		}
		return h.render(c, formStatus(err), view.PageSignUp, p)
	}
	if err := h.rotate(c); err != nil {
		return err
	}
	return h.follow(c, action)
}

// ── Verify ────────────────────────────────────────────────────────────────────

func (h *AuthHandler) VerifyPage(c echo.Context) error {
	session, err := h.auth.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	email := c.QueryParam("email")
	switch action := domain.Decide(session, h.auth.Portals()); action.State {
	case domain.StateLoading:
		return h.follow(c, action)
	case domain.StateAnonymous:
		if email == "" {
			return c.Redirect(http.StatusSeeOther, domain.PathSignIn)
		}
	case domain.StateAuthenticatedUnverified:
		email = session.User.Email
	default:
		return h.follow(c, action)
	}
	return h.render(c, http.StatusOK, view.PageVerify, verifyPage(email, nil))
}

func (h *AuthHandler) Verify(c echo.Context) error {
	var form verifyForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var entry domain.CodeEntry
	if form.Code != "" {
		entry.Paste(form.Code)
	} else {
		for i, d := range form.digits() {
			entry.Input(i, strings.TrimSpace(d))
		}
	}

	if !entry.Complete() {
		p := verifyPage(form.Email, &entry)
		p.Error = msgCodeRequired
		return h.render(c, http.StatusUnprocessableEntity, view.PageVerify, p)
	}

	action, err := h.auth.VerifyEmail(c.Request().Context(), sessionID(c), form.Email, entry.Code())
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return c.Redirect(http.StatusSeeOther, domain.PathSignIn)
		}
		entry.Fail()
		p := verifyPage(form.Email, &entry)
		p.Error = h.banner(err, msgCodeInvalid)
		return h.render(c, formStatus(err), view.PageVerify, p)
	}
	return h.follow(c, action)
}

func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var form emailForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	p := verifyPage(form.Email, nil)
	if strings.TrimSpace(form.Email) == "" {
		p.Error = msgEmailRequired
		return h.render(c, http.StatusUnprocessableEntity, view.PageVerify, p)
	}

	if err := h.auth.ResendVerification(c.Request().Context(), sessionID(c), strings.TrimSpace(form.Email)); err != nil {
		p.Error = h.banner(err, msgResendFailed)
		return h.render(c, formStatus(err), view.PageVerify, p)
	}
	p.Success = msgCodeResent
	return h.render(c, http.StatusOK, view.PageVerify, p)
}

func verifyPage(email string, entry *domain.CodeEntry) *view.Page {
	p := view.NewPage("Verify Email")
	p.Email = email
	if entry == nil {
		entry = &domain.CodeEntry{}
	}
	p.Digits = entry.Digits()
	p.Focus = entry.Focus()
	return p
}

// ── Terms ─────────────────────────────────────────────────────────────────────

// TermsPage is public; the accept control only shows for a verified session
// that has not accepted yet.
func (h *AuthHandler) TermsPage(c echo.Context) error {
	session, err := h.auth.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, view.PageTerms, termsPage(session))
}

func (h *AuthHandler) AcceptTerms(c echo.Context) error {
	ctx := c.Request().Context()
	action, err := h.auth.AcceptTerms(ctx, sessionID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return c.Redirect(http.StatusSeeOther, domain.PathSignIn)
		}
		session, snapErr := h.auth.Snapshot(ctx, sessionID(c))
		if snapErr != nil {
			return snapErr
		}
		p := termsPage(session)
		p.Error = h.banner(err, msgTermsFailed)
		return h.render(c, formStatus(err), view.PageTerms, p)
	}
	return h.follow(c, action)
}

func termsPage(session domain.AuthSession) *view.Page {
	p := view.NewPage("Terms of Service")
	p.Loading = session.Loading
	p.CanAccept = session.User != nil && session.User.EmailVerified && !session.User.TermsAccepted
	return p
}

// ── Password reset ────────────────────────────────────────────────────────────

func (h *AuthHandler) ForgotPasswordPage(c echo.Context) error {
	return h.render(c, http.StatusOK, view.PageForgotPassword, view.NewPage("Forgot Password"))
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var form emailForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	form.Email = strings.TrimSpace(form.Email)

	p := view.NewPage("Forgot Password")
	p.Form["email"] = form.Email

	if form.Email == "" {
		p.Error = msgEmailRequired
		return h.render(c, http.StatusUnprocessableEntity, view.PageForgotPassword, p)
	}
	if err := c.Validate(&form); err != nil {
		p.Error = h.banner(err, msgEmailRequired)
		return h.render(c, http.StatusUnprocessableEntity, view.PageForgotPassword, p)
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), sessionID(c), form.Email); err != nil {
		p.Error = h.banner(err, msgResetSendFailed)
		return h.render(c, formStatus(err), view.PageForgotPassword, p)
	}
	p.Done = true
	p.Email = form.Email
	return h.render(c, http.StatusOK, view.PageForgotPassword, p)
}

// ResetPasswordPage renders the new-password form for the link's token, or
// the invalid link panel when there is none.
func (h *AuthHandler) ResetPasswordPage(c echo.Context) error {
	p := view.NewPage("Reset Password")
	p.Token = c.QueryParam("token")
	return h.render(c, http.StatusOK, view.PageResetPassword, p)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var form resetPasswordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if form.Token == "" {
		form.Token = c.QueryParam("token")
	}

	p := view.NewPage("Reset Password")
	p.Token = form.Token
	if p.Token == "" {
		return h.render(c, http.StatusUnprocessableEntity, view.PageResetPassword, p)
	}

	if form.Password == "" || form.ConfirmPassword == "" {
		p.Error = msgFillAllFields
		return h.render(c, http.StatusUnprocessableEntity, view.PageResetPassword, p)
	}
	if err := c.Validate(&form); err != nil {
		p.Error = h.banner(err, msgFillAllFields)
		return h.render(c, http.StatusUnprocessableEntity, view.PageResetPassword, p)
	}

	if err := h.auth.ResetPassword(c.Request().Context(), sessionID(c), form.Token, form.Password); err != nil {
		p.Error = h.banner(err, msgResetLinkInvalid)
		return h.render(c, formStatus(err), view.PageResetPassword, p)
	}
	p.Done = true
	return h.render(c, http.StatusOK, view.PageResetPassword, p)
}

// ── Sign out ──────────────────────────────────────────────────────────────────

func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), sessionID(c)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, domain.PathSignIn)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// rotate moves a freshly signed-in session to a new ID so a session ID
// planted before sign-in is never authenticated.
func (h *AuthHandler) rotate(c echo.Context) error {
	ctx := c.Request().Context()
	return middleware.RotateSession(c, func(oldSID, newSID string) error {
		return h.auth.RotateSession(ctx, oldSID, newSID)
	})
}

// follow turns a decision into a response: the loading page while a submit
// is in flight, a 303 otherwise. Portal redirects leave the gateway.
func (h *AuthHandler) follow(c echo.Context, action domain.Action) error {
	if action.Kind == domain.ActionLoading {
		p := view.NewPage("Loading")
		p.Loading = true
		p.AutoRefresh = true
		return h.render(c, http.StatusOK, view.PageLoading, p)
	}
	if action.External() {
		h.log.Debug().Str("state", string(action.State)).Str("target", action.Target).Msg("portal redirect")
	}
	return c.Redirect(http.StatusSeeOther, action.Target)
}

func (h *AuthHandler) render(c echo.Context, status int, name string, p *view.Page) error {
	p.CSRF = csrfToken(c)
	return c.Render(status, name, p)
}

// banner picks the one message a failed submit shows.
func (h *AuthHandler) banner(err error, fallback string) string {
	var (
		ve *domain.ValidationError
		fe *FieldErrors
		ae *domain.AuthError
		ne *domain.NetworkError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &fe):
		return fe.First()
	case errors.Is(err, domain.ErrRequestInFlight):
		return msgInFlight
	case errors.As(err, &ne):
		h.log.Warn().Err(err).Str("op", ne.Op).Msg("auth api unreachable")
		return msgNetwork
	case errors.As(err, &ae):
		if ae.Message != "" {
			return ae.Message
		}
		return fallback
	default:
		h.log.Error().Err(err).Msg("auth page error")
		return fallback
	}
}

// formStatus is the status code of a page re-rendered after err.
func formStatus(err error) int {
	var (
		ve *domain.ValidationError
		fe *FieldErrors
		ae *domain.AuthError
		ne *domain.NetworkError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRequestInFlight):
		return http.StatusConflict
	case errors.As(err, &ne):
		return http.StatusBadGateway
	case errors.As(err, &ae):
		if ae.Status >= 400 && ae.Status < 500 {
			return ae.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

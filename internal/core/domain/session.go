package domain

import "time"

// AuthSession is a point-in-time view of one browser session.
type AuthSession struct {
	User *User
	// Loading is true only while an auth call for this session is in flight.
	Loading   bool
	ExpiresAt time.Time
}

// ExpiresWithin reports whether an authenticated session ends inside window.
func (s AuthSession) ExpiresWithin(now time.Time, window time.Duration) bool {
	if s.User == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !s.ExpiresAt.After(now.Add(window))
}

// AuthState classifies a session for routing.
type AuthState string

const (
	StateLoading                      AuthState = "loading"
	StateAnonymous                    AuthState = "anonymous"
	StateAuthenticatedUnverified      AuthState = "authenticated_unverified"
	StateAuthenticatedVerifiedNoTerms AuthState = "authenticated_verified_no_terms"
	StateAuthenticatedReady           AuthState = "authenticated_ready"
)

// ActionKind tells the caller what to do with a decision.
type ActionKind string

const (
	ActionLoading        ActionKind = "loading"
	ActionShowSignIn     ActionKind = "show_sign_in"
	ActionNavigate       ActionKind = "navigate"
	ActionPortalRedirect ActionKind = "portal_redirect"
)

// Internal page paths the decision can point at.
const (
	PathSignIn = "/signin"
	PathVerify = "/verify"
	PathTerms  = "/terms"
)

// Action is the outcome of Decide. Target is an internal path for
// ActionNavigate and an absolute URL for ActionPortalRedirect.
type Action struct {
	Kind   ActionKind `json:"kind"`
	State  AuthState  `json:"state"`
	Target string     `json:"target,omitempty"`
}

// External reports whether following the action leaves this application.
func (a Action) External() bool {
	return a.Kind == ActionPortalRedirect
}

// Decide classifies session and names where it belongs. It has no side
// effects; callers perform the navigation.
func Decide(session AuthSession, portals PortalRoutes) Action {
	switch {
	case session.Loading:
		return Action{Kind: ActionLoading, State: StateLoading}
	case session.User == nil:
		return Action{Kind: ActionShowSignIn, State: StateAnonymous, Target: PathSignIn}
	case !session.User.EmailVerified:
		return Action{Kind: ActionNavigate, State: StateAuthenticatedUnverified, Target: PathVerify}
	case !session.User.TermsAccepted:
		return Action{Kind: ActionNavigate, State: StateAuthenticatedVerifiedNoTerms, Target: PathTerms}
	default:
		return Action{Kind: ActionPortalRedirect, State: StateAuthenticatedReady, Target: portals.URL(session.User.Role)}
	}
}

// WithReturn swaps the portal target of a ready session for returnURL when
// the portals allow it. Every other action is returned unchanged.
func (a Action) WithReturn(returnURL string, portals PortalRoutes) Action {
	if a.Kind != ActionPortalRedirect || returnURL == "" {
		return a
	}
	if !portals.AllowsReturn(returnURL) {
		return a
	}
	a.Target = returnURL
	return a
}

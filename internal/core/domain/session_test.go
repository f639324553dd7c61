package domain

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	portals := ProductionPortalRoutes()

	tests := []struct {
		name       string
		session    AuthSession
		wantKind   ActionKind
		wantState  AuthState
		wantTarget string
	}{
		{
			name:      "loading wins over everything",
			session:   AuthSession{Loading: true, User: &User{EmailVerified: true, TermsAccepted: true}},
			wantKind:  ActionLoading,
			wantState: StateLoading,
		},
		{
			name:       "anonymous",
			session:    AuthSession{},
			wantKind:   ActionShowSignIn,
			wantState:  StateAnonymous,
			wantTarget: PathSignIn,
		},
		{
			name:       "unverified",
			session:    AuthSession{User: &User{Role: RoleDriver}},
			wantKind:   ActionNavigate,
			wantState:  StateAuthenticatedUnverified,
			wantTarget: PathVerify,
		},
		{
			name:       "unverified even with terms accepted",
			session:    AuthSession{User: &User{TermsAccepted: true}},
			wantKind:   ActionNavigate,
			wantState:  StateAuthenticatedUnverified,
			wantTarget: PathVerify,
		},
		{
			name:       "verified without terms",
			session:    AuthSession{User: &User{EmailVerified: true}},
			wantKind:   ActionNavigate,
			wantState:  StateAuthenticatedVerifiedNoTerms,
			wantTarget: PathTerms,
		},
		{
			name:       "ready manager",
			session:    AuthSession{User: &User{Role: RoleManager, EmailVerified: true, TermsAccepted: true}},
			wantKind:   ActionPortalRedirect,
			wantState:  StateAuthenticatedReady,
			wantTarget: "https://franchise.stafull.com",
		},
		{
			name:       "ready unknown role",
			session:    AuthSession{User: &User{Role: Role("astronaut"), EmailVerified: true, TermsAccepted: true}},
			wantKind:   ActionPortalRedirect,
			wantState:  StateAuthenticatedReady,
			wantTarget: "https://my.stafull.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.session, portals)
			if got.Kind != tt.wantKind || got.State != tt.wantState || got.Target != tt.wantTarget {
				t.Fatalf("Decide() = %+v, want kind=%s state=%s target=%q", got, tt.wantKind, tt.wantState, tt.wantTarget)
			}
			if again := Decide(tt.session, portals); again != got {
				t.Fatalf("Decide is not idempotent: %+v then %+v", got, again)
			}
		})
	}
}

func TestAction_WithReturn(t *testing.T) {
	portals := ProductionPortalRoutes()
	ready := Decide(AuthSession{User: &User{Role: RoleCustomer, EmailVerified: true, TermsAccepted: true}}, portals)

	if got := ready.WithReturn("https://hq.stafull.com/reports", portals); got.Target != "https://hq.stafull.com/reports" {
		t.Fatalf("expected portal return URL to be honoured, got %q", got.Target)
	}
	if got := ready.WithReturn("https://evil.example.com/", portals); got.Target != "https://my.stafull.com" {
		t.Fatalf("expected foreign host to be ignored, got %q", got.Target)
	}
	if got := ready.WithReturn("javascript:alert(1)", portals); got.Target != "https://my.stafull.com" {
		t.Fatalf("expected non-http URL to be ignored, got %q", got.Target)
	}

	unverified := Decide(AuthSession{User: &User{}}, portals)
	if got := unverified.WithReturn("https://hq.stafull.com", portals); got != unverified {
		t.Fatalf("expected non-ready action unchanged, got %+v", got)
	}
}

func TestAuthSession_ExpiresWithin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := AuthSession{User: &User{}, ExpiresAt: now.Add(4 * time.Minute)}

	if !s.ExpiresWithin(now, 5*time.Minute) {
		t.Fatalf("expected session to expire within 5m")
	}
	if s.ExpiresWithin(now, time.Minute) {
		t.Fatalf("did not expect session to expire within 1m")
	}
	if (AuthSession{ExpiresAt: now}).ExpiresWithin(now, time.Hour) {
		t.Fatalf("anonymous session never expires")
	}
}

func TestUser_FlagsAreMonotonic(t *testing.T) {
	u := User{ID: "1", EmailVerified: true}
	u.Merge(User{ID: "1", Role: RoleDriver})
	if !u.EmailVerified {
		t.Fatalf("Merge cleared EmailVerified")
	}
	if u.Role != RoleDriver {
		t.Fatalf("Merge did not apply fresh role")
	}
	u.MarkTermsAccepted()
	u.Merge(User{ID: "1"})
	if !u.TermsAccepted {
		t.Fatalf("Merge cleared TermsAccepted")
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole(" SBA_Lender "); got != RoleSBALender {
		t.Fatalf("ParseRole() = %q", got)
	}
	if got := ParseRole("superuser"); got != RoleUnknown {
		t.Fatalf("expected RoleUnknown, got %q", got)
	}
}

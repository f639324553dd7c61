package ports

import (
	"context"

	"github.com/stafull/auth-portal/internal/core/domain"
)

// AuthResult is what login and register return. Register may omit the tokens
// when the account still needs verification.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         domain.User
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// AuthClient is the contract of the external auth REST API. Implementations
// return *domain.AuthError for rejections and *domain.NetworkError when the
// request did not complete.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) error
	AcceptTerms(ctx context.Context, accessToken string) error
}

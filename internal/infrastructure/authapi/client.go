// Package authapi is the HTTP client for the external StaFull auth REST API.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

const maxErrorBody = 64 << 10

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.AuthClient over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.AuthClient = (*Client)(nil)

// New builds a client. A zero Timeout means 10s.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// userDTO is the account as the auth API serialises it.
type userDTO struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	TermsAccepted bool   `json:"termsAccepted"`
}

func (u userDTO) toDomain() domain.User {
	return domain.User{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          domain.ParseRole(u.Role),
		EmailVerified: u.EmailVerified,
		TermsAccepted: u.TermsAccepted,
	}
}

type authResponse struct {
	Token        string  `json:"token"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         userDTO `json:"user"`
}

func (r authResponse) toResult() *ports.AuthResult {
	access := r.AccessToken
	if access == "" {
		access = r.Token
	}
	return &ports.AuthResult{
		AccessToken:  access,
		RefreshToken: r.RefreshToken,
		User:         r.User.toDomain(),
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "login", "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return out.toResult(), nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	body := struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Phone     string `json:"phone,omitempty"`
	}{in.FirstName, in.LastName, in.Email, in.Password, in.Phone}

	var out authResponse
	if err := c.post(ctx, "register", "/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return out.toResult(), nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "request-reset", "/auth/request-reset", "", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return c.post(ctx, "reset-password", "/auth/reset-password", "", body, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.post(ctx, "verify-email", "/auth/verify-email", "", body, nil)
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.post(ctx, "send-verification", "/auth/send-verification", "", map[string]string{"email": email}, nil)
}

func (c *Client) AcceptTerms(ctx context.Context, accessToken string) error {
	return c.post(ctx, "accept-terms", "/auth/accept-terms", accessToken, struct{}{}, nil)
}

// Ping checks that the auth API answers at all. Any HTTP status counts as
// reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "ping", Err: err}
	}
	resp.Body.Close()
	return nil
}

// post sends body as JSON and decodes a 2xx response into out when non-nil.
// Non-2xx responses become *domain.AuthError; failures before a response
// arrives become *domain.NetworkError.
func (c *Client) post(ctx context.Context, op, path, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("authapi %s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("authapi %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Dur("elapsed", time.Since(start)).Msg("auth api unreachable")
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("auth api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	ae := &domain.AuthError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil {
		ae.Code = body.Code
		ae.Message = body.Error
		if ae.Message == "" {
			ae.Message = body.Message
		}
	}
	if ae.Message == "" {
		ae.Message = http.StatusText(resp.StatusCode)
	}
	return ae
}

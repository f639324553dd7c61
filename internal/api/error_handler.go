package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/api/handler"
	"github.com/stafull/auth-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, CSRF, rate limit).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var (
		ve *domain.ValidationError
		fe *handler.FieldErrors
		ae *domain.AuthError
		ne *domain.NetworkError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity, fe.Error()
	case errors.As(err, &ne):
		log.Warn().Err(err).Str("path", c.Path()).Msg("auth api unreachable")
		return http.StatusBadGateway, "auth service unavailable"
	case errors.As(err, &ae):
		if ae.Status >= 400 && ae.Status < 500 {
			return ae.Status, ae.Message
		}
		log.Warn().Err(err).Str("path", c.Path()).Msg("auth api failed")
		return http.StatusBadGateway, "auth service unavailable"
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrSessionNotReady):
		return http.StatusForbidden, "session is not ready"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrRequestInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidMode), errors.Is(err, domain.ErrInvalidTelemetry):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrChecklistItem):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNotInDelivery), errors.Is(err, domain.ErrChecklistIncomplete):
		return http.StatusConflict, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

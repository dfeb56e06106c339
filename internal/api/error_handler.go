package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/api/metrics"
	"github.com/sharethrift/marketplace/internal/core/domain"
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
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Typed errors carry a
	// caller-fixable message, so it is returned as is.
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		metrics.PermissionDenialsTotal.WithLabelValues(c.Request().Method).Inc()
		return http.StatusForbidden, innermost[*domain.PermissionError](err)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, innermost[*domain.ValidationError](err)
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict, innermost[*domain.InvalidStateTransitionError](err)
	case errors.Is(err, domain.ErrInvariantViolation):
		return http.StatusConflict, innermost[*domain.InvariantViolationError](err)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, "resource was modified concurrently, retry the request"
	case errors.Is(err, domain.ErrHandleTaken):
		return http.StatusConflict, "handle already taken"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// innermost returns the message of the typed domain error wrapped in err,
// dropping the service-level operation prefixes.
func innermost[E error](err error) string {
	var target E
	if errors.As(err, &target) {
		return target.Error()
	}
	return err.Error()
}

// Package errorhandler maps domain errors onto the response envelope and
// logs them with the request context.
package errorhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/seatbook/seatbook-api/internal/pkg/logger"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
)

// Rule maps a sentinel error to an HTTP status and a stable error code.
type Rule struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// HandleError logs the failure and writes an error response.
// 5xx responses are logged at error level, everything else at debug.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	l := logger.FromContext(ctx)
	event := l.Debug()
	if status >= http.StatusInternalServerError {
		event = l.Error()
	}
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("error_code", code).
		Int("status_code", status).
		Msg(message)

	response.Error(w, status, code, message)
}

// HandleDomainError writes the first rule whose error matches err via
// errors.Is. Unmatched errors become INTERNAL_ERROR.
func HandleDomainError(ctx context.Context, w http.ResponseWriter, err error, rules ...Rule) {
	for _, rule := range rules {
		if errors.Is(err, rule.Err) {
			message := rule.Message
			if message == "" {
				message = rule.Err.Error()
			}
			HandleError(ctx, w, rule.Status, rule.Code, message, err)
			return
		}
	}
	HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
}

// LogExternalServiceError logs errors from external service calls
func LogExternalServiceError(ctx context.Context, service, endpoint string, statusCode int, err error) {
	logger.FromContext(ctx).Error().
		Str("external_service", service).
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Err(err).
		Msg("External service error")
}

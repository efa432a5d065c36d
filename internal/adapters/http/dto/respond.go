package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

const (
	// traceIDKey is the gin key the telemetry middleware stores the trace ID under.
	traceIDKey = "trace_id"

	// requestIDHeader is the fallback correlation handle when tracing is off.
	requestIDHeader = "X-Request-ID"
)

// GetTraceID returns the trace ID set by the telemetry middleware, falling
// back to the inbound X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(traceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
		return ""
	}

	return c.GetHeader(requestIDHeader)
}

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	switch {
	case err == nil:
		return http.StatusOK, nil

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsEmptyResult(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeEmptyResult, err.Error())

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timed out")

	case domain.IsTransport(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable,
			"quote source temporarily unavailable")

	default:
		// Persistence and unknown errors never leak internals.
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleError writes the mapped error response with the request's trace ID.
// 5xx responses are logged with the underlying error.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	if resp == nil {
		return
	}
	resp.WithTraceID(GetTraceID(c))

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithErrorCode writes an error response for adapter-level failures
// (malformed body, bad cursor) that carry no domain error.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithBindingError writes a 400 for a failed BindAndValidate, with
// field-level details when the validator produced them.
func RespondWithBindingError(c *gin.Context, err error) {
	if fields := ValidationErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest,
			NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fields).
				WithTraceID(GetTraceID(c)))
		return
	}

	RespondWithErrorCode(c, ErrorCodeBadRequest, "malformed request body")
}

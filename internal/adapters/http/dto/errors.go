// Package dto holds the wire types of the quote API and the helpers that
// bind, validate and render them.
package dto

import "net/http"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the machine-readable code, a message and, for validation
// failures, per-field messages.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeNotFound   = "NOT_FOUND"
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeBadRequest = "BAD_REQUEST"
	ErrorCodeInternal   = "INTERNAL_ERROR"
	ErrorCodeTimeout    = "TIMEOUT"

	// ErrorCodeEmptyResult means no quote matched the active category filter.
	ErrorCodeEmptyResult = "EMPTY_RESULT"

	// ErrorCodeConflict means a sync cycle is already running.
	ErrorCodeConflict = "CONFLICT"

	// ErrorCodeUnavailable means the remote quote server could not be reached.
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"

	// ErrorCodeTooLarge means an upload exceeded server.max_request_size.
	ErrorCodeTooLarge = "PAYLOAD_TOO_LARGE"
)

var statusByCode = map[string]int{
	ErrorCodeNotFound:    http.StatusNotFound,
	ErrorCodeEmptyResult: http.StatusNotFound,
	ErrorCodeConflict:    http.StatusConflict,
	ErrorCodeValidation:  http.StatusBadRequest,
	ErrorCodeBadRequest:  http.StatusBadRequest,
	ErrorCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrorCodeUnavailable: http.StatusServiceUnavailable,
	ErrorCodeTimeout:     http.StatusGatewayTimeout,
}

// NewErrorResponse creates an error body.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// NewErrorResponseWithDetails creates an error body with field messages.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.Error.Details = details

	return resp
}

// WithTraceID sets the trace ID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status for code; unknown codes are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// Package middleware provides the Gin middleware chain of the quote API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

// Headers carrying the IDs echoed on every response.
const (
	// HeaderRequestID identifies one HTTP exchange.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID spans a whole caller transaction and is forwarded
	// to the remote quote server unchanged.
	HeaderCorrelationID = "X-Correlation-ID"

	// HeaderSessionID names the client session owning transient state such
	// as the last viewed quote.
	HeaderSessionID = "X-Session-ID"
)

// Gin keys the ID middleware store under.
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
	ContextKeySessionID     = "session_id"

	// ContextKeySessionMinted is true when Session generated the ID.
	ContextKeySessionMinted = "session_minted"
)

// RequestID reuses a printable caller X-Request-ID or generates a UUID.
func RequestID() gin.HandlerFunc {
	return propagate(idSpec{
		header: HeaderRequestID,
		key:    ContextKeyRequestID,
		attach: attachers(ContextWithRequestID, logging.WithRequestID),
	})
}

// CorrelationID keeps an upstream X-Correlation-ID; otherwise this request
// starts the transaction.
func CorrelationID() gin.HandlerFunc {
	return propagate(idSpec{
		header: HeaderCorrelationID,
		key:    ContextKeyCorrelationID,
		attach: attachers(ContextWithCorrelationID, logging.WithCorrelationID),
	})
}

// Session resolves the client session. A missing or non-UUID X-Session-ID
// starts a new session; the ID in use is always echoed back so clients can
// keep it.
func Session() gin.HandlerFunc {
	return propagate(idSpec{
		header: HeaderSessionID,
		key:    ContextKeySessionID,
		reuse: func(id string) bool {
			return uuid.Validate(id) == nil
		},
		attach:    attachers(ContextWithSessionID, logging.WithSessionID),
		mintedKey: ContextKeySessionMinted,
	})
}

// GetRequestID returns the request ID, or "" when RequestID did not run.
func GetRequestID(c *gin.Context) string {
	return idFrom(c, ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID, or "".
func GetCorrelationID(c *gin.Context) string {
	return idFrom(c, ContextKeyCorrelationID)
}

// GetSessionID returns the session ID, or "".
func GetSessionID(c *gin.Context) string {
	return idFrom(c, ContextKeySessionID)
}

// GetClientSessionID returns the session ID only when the caller sent it.
// A session minted for this request has no client that could read its state
// back, so writes keyed on it would only grow the store.
func GetClientSessionID(c *gin.Context) string {
	if c.GetBool(ContextKeySessionMinted) {
		return ""
	}
	return GetSessionID(c)
}

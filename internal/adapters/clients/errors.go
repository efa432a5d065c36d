// Package clients provides the instrumented HTTP client used to reach the
// remote quote server.
package clients

import "errors"

// Transport failures. The ACL translates them into domain.TransportError.
var (
	// ErrCircuitOpen is returned without contacting the remote while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrAttemptsExhausted wraps the last failure once every transport
	// attempt of one call has failed.
	ErrAttemptsExhausted = errors.New("transport attempts exhausted")
)

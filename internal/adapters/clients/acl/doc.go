// Package acl is the Anti-Corruption Layer between the quote domain and the
// uncontrolled remote quote endpoint.
//
// The remote service speaks its own dialect (posts with a title, an id and an
// optional author). Nothing from that dialect crosses this package boundary:
//
//   - External DTOs are unexported and live next to the adapter that reads them
//   - Field mapping (title to text, author or a default label to category) happens here
//   - Every failure becomes a [domain.TransportError], whatever its cause
//
// # Components
//
// [RemoteSource] is the ports.RemoteQuoteSource implementation. It embeds an
// unexported endpoint holding the request plumbing and the error mapping.
//
// # Error Handling Strategy
//
// The reconciler treats every remote failure the same way (fail fast, notify,
// wait for the next tick), so the mapping is intentionally flat:
//
//   - Network errors, open circuit, exhausted retries: TransportError without status
//   - Any non-2xx status: TransportError carrying the status and the remote message
//   - Undecodable success bodies: TransportError "malformed response"
package acl

package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/domain"
)

const (
	// maxErrorBody bounds how much of a rejected response is read for its message.
	maxErrorBody = 4 << 10

	// maxCollectionBody bounds a fetched collection.
	maxCollectionBody = 1 << 20
)

// endpoint is one remote service reached through a resilient client. Every
// failure it returns is a *domain.TransportError.
type endpoint struct {
	client  *clients.Client
	service string
}

// ServiceName is the remote's name in errors, logs and health output.
func (e *endpoint) ServiceName() string {
	return e.service
}

// get returns the body of a 2xx response. The caller closes it.
func (e *endpoint) get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := e.client.Get(ctx, path)
	return e.accept(resp, err, operation)
}

func (e *endpoint) post(ctx context.Context, path string, body io.Reader, operation string) (io.ReadCloser, error) {
	resp, err := e.client.Post(ctx, path, body)
	return e.accept(resp, err, operation)
}

func (e *endpoint) accept(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, e.transportFailure(err, operation)
	}
	if resp.StatusCode/100 == 2 {
		return resp.Body, nil
	}

	defer func() { _ = resp.Body.Close() }()

	return nil, e.rejected(resp, operation)
}

// transportFailure describes an exchange that produced no usable response.
// Exhausted attempts already carry the last cause in their text.
func (e *endpoint) transportFailure(err error, operation string) error {
	var reason string
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timed out"
	case errors.Is(err, context.Canceled):
		reason = "canceled"
	default:
		reason = err.Error()
	}

	return domain.NewTransportError(e.service, operation, reason)
}

// rejected describes a non-2xx response, preferring the remote's own message.
func (e *endpoint) rejected(resp *http.Response, operation string) error {
	reason := remoteMessage(resp.Body)
	if reason == "" {
		reason = statusReason(resp.StatusCode)
	}

	return domain.NewTransportStatusError(e.service, operation, resp.StatusCode, reason)
}

// remoteError accepts both {"error":{"message":...}} and {"message":...}.
type remoteError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// remoteMessage extracts a message from an error body, or returns "".
func remoteMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	var re remoteError
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&re); err != nil {
		return ""
	}
	if re.Error.Message != "" {
		return re.Error.Message
	}

	return re.Message
}

func statusReason(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate limit exceeded"
	case status >= http.StatusInternalServerError:
		return "remote unavailable"
	case status >= http.StatusBadRequest:
		return "request rejected"
	default:
		return "unexpected status"
	}
}

// decodeJSON decodes and closes body.
func decodeJSON[T any](body io.ReadCloser) (T, error) {
	var out T
	if body == nil {
		return out, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(io.LimitReader(body, maxCollectionBody)).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding %T: %w", out, err)
	}

	return out, nil
}

// translateBounded maps items in order, dropping those translate rejects,
// and stops once limit values are kept. A limit below 1 keeps everything.
func translateBounded[E, D any](items []E, translate func(*E) (D, bool), limit int) []D {
	if limit < 1 || limit > len(items) {
		limit = len(items)
	}
	out := make([]D, 0, limit)

	for i := range items {
		if len(out) == limit {
			break
		}
		if v, ok := translate(&items[i]); ok {
			out = append(out, v)
		}
	}

	return out
}

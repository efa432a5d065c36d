package acl

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
)

// newTestClient builds a single-attempt client whose circuit opens after maxFailures.
func newTestClient(t *testing.T, baseURL string, maxFailures int) *clients.Client {
	t.Helper()

	c, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "quote-remote",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   maxFailures,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	})
	require.NoError(t, err)

	return c
}

func serveJSON(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

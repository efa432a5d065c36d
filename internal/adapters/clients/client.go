package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-generator/internal/adapters/clients"

	defaultTimeout = 30 * time.Second
)

// Result labels attached to the request metrics.
const (
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "context_canceled"
	resultError       = "error"
)

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// ServiceName names the remote in logs, spans and metrics.
	ServiceName string

	// Timeout bounds a single attempt, not the whole call.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// OnCircuitChange, if set, observes every breaker transition.
	OnCircuitChange func(Transition)

	Logger *slog.Logger
}

// Client talks to the remote quote server. Every call is guarded by a
// Breaker, retried with jittered exponential backoff, traced and measured.
type Client struct {
	http    *http.Client
	baseURL string
	name    string
	retry   config.RetryConfig
	breaker *Breaker
	logger  *slog.Logger
	tracer  trace.Tracer

	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// New creates a Client. ServiceName is required; a zero timeout and attempt
// count fall back to 30s and one attempt.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retry := cfg.Retry
	retry.MaxAttempts = max(retry.MaxAttempts, 1)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	breaker := NewBreaker(cfg.Circuit)
	breaker.Observe(func(t Transition) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", t.From.String()),
			slog.String("to", t.To.String()),
		)
	})
	if cfg.OnCircuitChange != nil {
		breaker.Observe(cfg.OnCircuitChange)
	}

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("quote.remote.request.duration",
		metric.WithDescription("Duration of calls to the remote quote server"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter("quote.remote.request.total",
		metric.WithDescription("Calls to the remote quote server"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        cfg.Transport.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
				IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
			},
		},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		name:     cfg.ServiceName,
		retry:    retry,
		breaker:  breaker,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		total:    total,
	}, nil
}

// call carries the per-request state shared by the attempt loop.
type call struct {
	req     *http.Request
	started time.Time
	logger  *slog.Logger
	span    trace.Span
}

// Do sends req, retrying transport errors and 5xx responses.
//
// A non-2xx response below 500 is returned as is; the caller maps it.
// Bodies are resent on retry only when req.GetBody is set, which
// NewRequestWithContext does for *bytes.Reader.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	cl := &call{
		req:     req,
		started: time.Now(),
		logger: logging.FromContext(ctx).With(
			slog.String("downstream", c.name),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		),
	}

	if !c.breaker.Allow() {
		c.measure(ctx, cl, 0, resultCircuitOpen)
		cl.logger.Warn("request blocked by circuit breaker")
		return nil, ErrCircuitOpen
	}

	propagateIDs(ctx, req)

	ctx, cl.span = c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.name),
		),
	)
	defer cl.span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.attempt(ctx, cl)
	if err != nil {
		return nil, c.fail(ctx, cl, err)
	}

	c.breaker.Success()
	cl.span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		cl.span.SetStatus(codes.Error, "HTTP "+resp.Status)
	}
	c.measure(ctx, cl, resp.StatusCode, fmt.Sprintf("%dxx", resp.StatusCode/100))
	cl.logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(cl.started)),
	)

	return resp, nil
}

// attempt runs the retry loop and returns the first acceptable response.
func (c *Client) attempt(ctx context.Context, cl *call) (*http.Response, error) {
	var lastErr error

	for n := range c.retry.MaxAttempts {
		if n > 0 {
			if err := c.backoff(ctx, cl, n); err != nil {
				return nil, err
			}
		}

		req, err := rewind(ctx, cl.req, n)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil && !isRetryableError(err):
			return nil, fmt.Errorf("%w: %w", ErrAttemptsExhausted, err)
		case err != nil:
			cl.logger.Debug("attempt failed", slog.Int("attempt", n+1), slog.Any("error", err))
			lastErr = err
		case resp.StatusCode >= http.StatusInternalServerError:
			cl.logger.Debug("attempt got server error", slog.Int("attempt", n+1), slog.Int("status", resp.StatusCode))
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		default:
			return resp, nil
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrAttemptsExhausted, lastErr)
}

// backoff sleeps before attempt n, or returns early when ctx ends.
func (c *Client) backoff(ctx context.Context, cl *call, n int) error {
	wait := c.calculateBackoff(n)
	cl.logger.Debug("retrying request", slog.Int("attempt", n+1), slog.Duration("backoff", wait))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fail records a failed call against the breaker, span and metrics.
func (c *Client) fail(ctx context.Context, cl *call, err error) error {
	c.breaker.Failure()
	cl.span.SetStatus(codes.Error, err.Error())

	result := resultError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result = resultCanceled
	}
	c.measure(ctx, cl, 0, result)

	cl.logger.Error("request failed",
		slog.Duration("duration", time.Since(cl.started)),
		slog.Any("error", err),
	)

	return err
}

// rewind binds req to ctx and, after the first attempt, gives it a fresh body.
func rewind(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	out := req.WithContext(ctx)
	if attempt == 0 || req.GetBody == nil {
		return out, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	out.Body = body

	return out, nil
}

// Get sends a GET to path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Post sends a JSON body to path.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Circuit returns the breaker's current snapshot.
func (c *Client) Circuit() BreakerSnapshot {
	return c.breaker.Snapshot()
}

// propagateIDs copies the inbound request and correlation IDs onto req.
func propagateIDs(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// calculateBackoff returns InitialInterval * Multiplier^attempt, capped at
// MaxInterval, then spread by JitterFactor in either direction.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	d := float64(c.retry.InitialInterval) * math.Pow(c.retry.Multiplier, float64(attempt))
	d = math.Min(d, float64(c.retry.MaxInterval))
	d += d * c.retry.JitterFactor * (rand.Float64()*2 - 1) //nolint:gosec // jitter does not need crypto randomness

	return time.Duration(d)
}

func (c *Client) measure(ctx context.Context, cl *call, status int, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", cl.req.Method),
		attribute.String("peer.service", c.name),
		attribute.String("result", result),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	opt := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, time.Since(cl.started).Seconds(), opt)
	c.total.Add(ctx, 1, opt)
}

// isRetryableError reports whether another attempt could succeed.
// Context errors never are; network timeouts and dial or connection errors are.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

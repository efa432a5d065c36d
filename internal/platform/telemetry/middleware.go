package telemetry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-generator/telemetry"

	// TraceIDKey is the gin context key carrying the active trace ID.
	TraceIDKey = "trace_id"

	// HeaderTraceID echoes the trace ID back to the caller.
	HeaderTraceID = "X-Trace-ID"
)

// unmatchedRoute labels requests no route matched, keeping 404 probes
// from minting a label per path.
const unmatchedRoute = "unmatched"

// httpMetrics are the OTel instruments recorded for every API request.
type httpMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	var (
		m    httpMetrics
		errs [3]error
	)

	m.duration, errs[0] = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time to serve a quote API request."),
		metric.WithUnit("s"),
	)
	m.total, errs[1] = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Quote API requests served, by route and status."),
	)
	m.active, errs[2] = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Quote API requests in flight."),
	)

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	return &m, nil
}

// Middleware records request metrics and surfaces the trace started by
// TracingMiddleware: the trace ID is set as the X-Trace-ID header, stored
// under TraceIDKey for error bodies and attached to the request logger.
func Middleware() gin.HandlerFunc {
	metrics, err := newHTTPMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Set(TraceIDKey, traceID)
			c.Header(HeaderTraceID, traceID)
			ctx = logging.WithTraceID(ctx, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		route := attribute.String("http.route", path)
		method := attribute.String("http.method", c.Request.Method)

		inFlight := metric.WithAttributes(method, route)
		metrics.active.Add(ctx, 1, inFlight)
		defer metrics.active.Add(ctx, -1, inFlight)

		c.Next()

		done := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
		metrics.duration.Record(ctx, time.Since(start).Seconds(), done)
		metrics.total.Add(ctx, 1, done)
	}
}

// TracingMiddleware returns the otelgin tracing middleware.
// Install it before Middleware so the span exists when metrics are recorded.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

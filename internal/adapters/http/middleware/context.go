package middleware

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
	sessionIDKey
)

// attachFunc threads an ID into a context.
type attachFunc = func(context.Context, string) context.Context

func attachers(fns ...attachFunc) []attachFunc { return fns }

// The IDs are copied into the request context so code below the HTTP layer,
// the outbound client in particular, can read them without gin.

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// RequestIDFromContext returns "" when no request ID was attached.
func RequestIDFromContext(ctx context.Context) string { return idValue(ctx, requestIDKey) }

func CorrelationIDFromContext(ctx context.Context) string { return idValue(ctx, correlationIDKey) }

func SessionIDFromContext(ctx context.Context) string { return idValue(ctx, sessionIDKey) }

func idValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key).(string)
	return id
}

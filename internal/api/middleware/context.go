package middleware

import (
	"context"
	"net/http"

	"github.com/minsukang/accounts/internal/auth"
)

type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
	sessionContextKey   contextKey = "session"
	writerContextKey    contextKey = "response_writer"
)

func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext returns the request id assigned by RequestID,
// or empty when none was assigned
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// WithSessionClaims attaches verified session claims to ctx
func WithSessionClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, sessionContextKey, claims)
}

// SessionFromContext returns the verified session claims, if any
func SessionFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(sessionContextKey).(*auth.Claims)
	return claims, ok
}

// WithWriter attaches a ResponseWriter to ctx
func WithWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, writerContextKey, w)
}

// WriterFromContext returns the ResponseWriter captured by
// CaptureWriter. Resolvers use it to set session cookies.
func WriterFromContext(ctx context.Context) (http.ResponseWriter, bool) {
	w, ok := ctx.Value(writerContextKey).(http.ResponseWriter)
	return w, ok
}

// CaptureWriter exposes the ResponseWriter to downstream handlers
// through the request context
func CaptureWriter() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithWriter(r.Context(), w)))
		})
	}
}

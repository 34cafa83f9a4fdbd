// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; handlers and the capture layer read them. The
// package has no net/http dependency so non-HTTP code can import it freely.
//
//	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "Mozilla/5.0 ...")
//	ip := requestcontext.ClientIP(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type (
	sessionIDKey      struct{}
	clientIPKey       struct{}
	userAgentKey      struct{}
	acceptLanguageKey struct{}
	requestIDKey      struct{}
	requestTimeKey    struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeySessionID      = sessionIDKey{}
	ContextKeyClientIP       = clientIPKey{}
	ContextKeyUserAgent      = userAgentKey{}
	ContextKeyAcceptLanguage = acceptLanguageKey{}
	ContextKeyRequestID      = requestIDKey{}
	ContextKeyRequestTime    = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Telemetry session
// -----------------------------------------------------------------------------

// SessionID retrieves the telemetry session id, or "" if not set.
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeySessionID).(string); ok {
		return id
	}
	return ""
}

// WithSessionID injects a telemetry session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent, Accept-Language)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// AcceptLanguage retrieves the Accept-Language header value from the context.
func AcceptLanguage(ctx context.Context) string {
	if lang, ok := ctx.Value(ContextKeyAcceptLanguage).(string); ok {
		return lang
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// WithAcceptLanguage injects the Accept-Language header value.
func WithAcceptLanguage(ctx context.Context, acceptLanguage string) context.Context {
	return context.WithValue(ctx, ContextKeyAcceptLanguage, acceptLanguage)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside a request (flush jobs, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

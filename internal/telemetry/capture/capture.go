// Package capture records one ServerEntry per served request into the
// server-origin buffer. It never alters the response.
package capture

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"strings"

	"sessiontrail/internal/platform/middleware"
	"sessiontrail/internal/telemetry/models"
	"sessiontrail/pkg/platform/middleware/metadata"
	pstrings "sessiontrail/pkg/platform/strings"
	"sessiontrail/pkg/requestcontext"
)

// Session id sources, checked in order.
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
)

// ServerSink receives captured entries; *buffer.Buffer[models.ServerEntry]
// satisfies it.
type ServerSink interface {
	Add(sessionID string, entry models.ServerEntry)
}

type stateKey struct{}

// state is shared between the middleware and Named so the handler name set
// deep in the chain is visible once the handler returns.
type state struct {
	handler string
}

// Middleware captures every request served by next. Requests without a
// session id are still passed to the sink, which discards them.
func Middleware(sink ServerSink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := &state{}
			ctx := context.WithValue(r.Context(), stateKey{}, st)
			sessionID := SessionIDFromRequest(r)
			if sessionID != "" {
				ctx = requestcontext.WithSessionID(ctx, sessionID)
			}
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)

			endpoint := middleware.RoutePattern(r)
			handler := st.handler
			if handler == "" {
				handler = endpoint
			}
			clientIP := requestcontext.ClientIP(ctx)
			if clientIP == "" {
				clientIP = metadata.ClientIPFromRequest(r)
			}
			sink.Add(sessionID, models.ServerEntry{
				Method:           r.Method,
				Endpoint:         endpoint,
				Handler:          handler,
				ParameterSummary: ParameterSummary(r),
				Timestamp:        requestcontext.Now(ctx),
				ClientIP:         clientIP,
			})
		})
	}
}

// Named labels the handler for captured entries. Outside Middleware it is a
// plain pass-through.
func Named(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st, ok := r.Context().Value(stateKey{}).(*state); ok {
			st.handler = name
		}
		h(w, r)
	}
}

// SessionIDFromRequest reads the telemetry session id from the X-Session-ID
// header, falling back to the session_id cookie.
func SessionIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// ParameterSummary lists the request's query parameter names, lowercased,
// deduplicated and sorted, joined by commas. Values are never recorded.
func ParameterSummary(r *http.Request) string {
	names := slices.Collect(maps.Keys(r.URL.Query()))
	return strings.Join(pstrings.SortedSet(names), ",")
}

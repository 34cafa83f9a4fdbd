package testutil

import (
	"net/http"
	"time"

	"sessiontrail/pkg/requestcontext"
)

// WithClientMetadata sets the client IP and User-Agent the metadata
// middleware would have stored.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}

// WithRequestTime pins the request-scoped time.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

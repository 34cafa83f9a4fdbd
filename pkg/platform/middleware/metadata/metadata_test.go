package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"sessiontrail/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{name: "forwarded for first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remoteAddr: "10.0.0.2:1234", expected: "203.0.113.7"},
		{name: "forwarded for single", headers: map[string]string{"X-Forwarded-For": " 203.0.113.8 "}, expected: "203.0.113.8"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.3"}, remoteAddr: "10.0.0.2:1234", expected: "198.51.100.3"},
		{name: "remote addr ipv4", remoteAddr: "192.0.2.1:5555", expected: "192.0.2.1"},
		{name: "remote addr ipv6", remoteAddr: "[::1]:5555", expected: "::1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.9", expected: "192.0.2.9"},
		{name: "nothing", remoteAddr: "", expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var ip, ua, lang, reqID string
	h := middleware.RequestID(ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip = requestcontext.ClientIP(ctx)
		ua = requestcontext.UserAgent(ctx)
		lang = requestcontext.AcceptLanguage(ctx)
		reqID = requestcontext.RequestID(ctx)
	})))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	r.Header.Set("User-Agent", "curl/8.0")
	r.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", ip)
	assert.Equal(t, "curl/8.0", ua)
	assert.Equal(t, "fr-FR,fr;q=0.9", lang)
	assert.NotEmpty(t, reqID)
}

package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		expected string
		token    string
		status   int
	}{
		{name: "matching token", expected: "s3cret", token: "s3cret", status: http.StatusNoContent},
		{name: "wrong token", expected: "s3cret", token: "nope", status: http.StatusUnauthorized},
		{name: "missing token", expected: "s3cret", token: "", status: http.StatusUnauthorized},
		{name: "unconfigured token rejects empty header", expected: "", token: "", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/v1/admin/flush", nil)
			if tt.token != "" {
				r.Header.Set(TokenHeader, tt.token)
			}
			rr := httptest.NewRecorder()
			RequireAdminToken(tt.expected, logger)(ok).ServeHTTP(rr, r)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

// Package handler exposes the telemetry ingestion and operator endpoints.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sessiontrail/internal/platform/middleware"
	"sessiontrail/internal/telemetry/capture"
	"sessiontrail/internal/telemetry/flush"
	"sessiontrail/internal/telemetry/models"
	"sessiontrail/internal/telemetry/ports"
	"sessiontrail/internal/telemetry/snapshot"
	"sessiontrail/pkg/platform/middleware/admin"
	"sessiontrail/pkg/requestcontext"
)

// maxBodyBytes bounds every ingestion body.
const maxBodyBytes = 1 << 20

// BrowserSink receives browser entries; *buffer.Buffer[models.BrowserEntry]
// satisfies it.
type BrowserSink interface {
	AddBatch(sessionID string, batch []models.BrowserEntry)
}

// Flusher runs an on-demand full flush.
type Flusher interface {
	FlushAll(ctx context.Context) (flush.Result, error)
}

// Handler serves the telemetry endpoints.
type Handler struct {
	browser    BrowserSink
	snapshots  ports.SnapshotStore
	flusher    Flusher
	adminToken string
	logger     *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithAdmin enables POST /v1/admin/flush guarded by token. Without it, or
// with an empty token, the route is not registered.
func WithAdmin(flusher Flusher, token string) Option {
	return func(h *Handler) {
		h.flusher = flusher
		h.adminToken = token
	}
}

// New creates a Handler.
func New(browser BrowserSink, snapshots ports.SnapshotStore, opts ...Option) *Handler {
	h := &Handler{browser: browser, snapshots: snapshots}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Register registers the telemetry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/telemetry/sessions/{sessionID}", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Post("/events", capture.Named("telemetry.events", h.handleEvents))
		r.Post("/snapshot", capture.Named("telemetry.snapshot", h.handleSnapshot))
	})

	if h.flusher != nil && h.adminToken != "" {
		r.With(admin.RequireAdminToken(h.adminToken, h.logger)).
			Post("/v1/admin/flush", capture.Named("admin.flush", h.handleFlush))
	}
}

// EventsRequest is the body of POST .../events.
type EventsRequest struct {
	Events []models.BrowserEntry `json:"events"`
}

// AcceptedResponse acknowledges an ingestion request.
type AcceptedResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

// handleEvents buffers the reported events. Unusable events are dropped by
// the buffer; the response is 202 for any well-formed body.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var req EventsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid telemetry events body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	now := requestcontext.Now(ctx)
	clientIP := requestcontext.ClientIP(ctx)
	for i := range req.Events {
		if req.Events[i].Timestamp.IsZero() {
			req.Events[i].Timestamp = now
		}
		req.Events[i].ClientIP = clientIP
	}
	h.browser.AddBatch(sessionID, req.Events)

	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted", Accepted: len(req.Events)})
}

// handleSnapshot stores the session's client snapshot. Blank fields are
// derived from the request headers. Only the first snapshot per session is kept.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var snap models.ClientSnapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&snap); err != nil {
		h.logger.WarnContext(ctx, "invalid snapshot body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	userAgent := requestcontext.UserAgent(ctx)
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	acceptLanguage := requestcontext.AcceptLanguage(ctx)
	if acceptLanguage == "" {
		acceptLanguage = r.Header.Get("Accept-Language")
	}
	completed := snapshot.Complete(snap, userAgent, acceptLanguage)
	h.snapshots.Add(ctx, sessionID, &completed)

	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted", Accepted: 1})
}

// FlushResponse reports an on-demand flush.
type FlushResponse struct {
	Status    string `json:"status"`
	Keys      int    `json:"keys"`
	Persisted int    `json:"persisted"`
}

func (h *Handler) handleFlush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.flusher.FlushAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "admin flush failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "flush_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, FlushResponse{Status: "flushed", Keys: result.Keys, Persisted: result.Persisted})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}

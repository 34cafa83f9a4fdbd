// Package flush drains the action buffers, correlates what was drained per
// (session, category) key, and hands one batch of audit records to the
// persistence boundary.
//
// A flush call is all-or-nothing with respect to serialization: if any key's
// context cannot be serialized the whole call is aborted and nothing is
// persisted, including keys that serialized fine earlier in the same call.
// Drained entries are not re-inserted, so such a call loses its batch. The
// loss is logged and counted.
package flush

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sessiontrail/internal/telemetry/buffer"
	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
	"sessiontrail/internal/telemetry/ports"
	audit "sessiontrail/pkg/platform/audit"
	"sessiontrail/pkg/platform/sentinel"
)

var (
	// ErrSerialization is returned when an audit context could not be serialized.
	ErrSerialization = errors.New("audit context serialization failed")
	// ErrInvalidThreshold is returned for a non-positive threshold.
	ErrInvalidThreshold = fmt.Errorf("threshold must be positive: %w", sentinel.ErrInvalidInput)
	// ErrInvalidCategory is returned for a category outside the closed set.
	ErrInvalidCategory = fmt.Errorf("unknown action category: %w", sentinel.ErrInvalidInput)
)

// Trigger label values.
const (
	TriggerCategory = "category"
	TriggerFull     = "full"
)

// Drainer is the drain side of a buffer.Buffer.
type Drainer[T buffer.Item] interface {
	DrainIfThresholdMet(category models.ActionCategory, threshold int) buffer.Drained[T]
	DrainAll() buffer.Drained[T]
}

// Codec serializes an audit context into the text stored on the record.
type Codec func(models.AuditContext) ([]byte, error)

// JSONCodec is the default codec.
func JSONCodec(c models.AuditContext) ([]byte, error) {
	return json.Marshal(c)
}

// Result summarizes one flush call.
type Result struct {
	Keys      int // keys drained from either buffer
	Persisted int // records handed to persistence successfully
}

// Coordinator runs flushes. It holds no state of its own between calls.
type Coordinator struct {
	browser   Drainer[models.BrowserEntry]
	server    Drainer[models.ServerEntry]
	snapshots ports.SnapshotStore
	persister ports.BatchPersister

	codec   Codec
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCodec replaces the JSON codec.
func WithCodec(codec Codec) Option {
	return func(c *Coordinator) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithClock sets the clock stamped on records.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the record id generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithTracer sets the tracer; the global otel provider is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = tracer
	}
}

// New creates a Coordinator over the two action buffers, the snapshot store
// and the persistence boundary.
func New(
	browser Drainer[models.BrowserEntry],
	server Drainer[models.ServerEntry],
	snapshots ports.SnapshotStore,
	persister ports.BatchPersister,
	opts ...Option,
) (*Coordinator, error) {
	if browser == nil {
		return nil, errors.New("browser buffer is required")
	}
	if server == nil {
		return nil, errors.New("server buffer is required")
	}
	if snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	if persister == nil {
		return nil, errors.New("batch persister is required")
	}

	c := &Coordinator{
		browser:   browser,
		server:    server,
		snapshots: snapshots,
		persister: persister,
		codec:     JSONCodec,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("sessiontrail/internal/telemetry/flush")
	}
	return c, nil
}

// FlushByCategory drains every key of category that reached threshold in
// either buffer and persists the correlated records. A key that crossed the
// threshold on one side only is still flushed.
func (c *Coordinator) FlushByCategory(ctx context.Context, category models.ActionCategory, threshold int) (Result, error) {
	if threshold <= 0 {
		return Result{}, ErrInvalidThreshold
	}
	if !category.IsValid() {
		return Result{}, ErrInvalidCategory
	}
	ctx, span := c.tracer.Start(ctx, "telemetry.flush", trace.WithAttributes(
		attribute.String("flush.trigger", TriggerCategory),
		attribute.String("flush.category", string(category)),
		attribute.Int("flush.threshold", threshold),
	))
	defer span.End()

	browser := c.browser.DrainIfThresholdMet(category, threshold)
	server := c.server.DrainIfThresholdMet(category, threshold)
	return c.flush(ctx, span, TriggerCategory, browser, server)
}

// FlushAll drains both buffers completely and persists the correlated records.
func (c *Coordinator) FlushAll(ctx context.Context) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "telemetry.flush", trace.WithAttributes(
		attribute.String("flush.trigger", TriggerFull),
	))
	defer span.End()

	browser := c.browser.DrainAll()
	server := c.server.DrainAll()
	return c.flush(ctx, span, TriggerFull, browser, server)
}

func (c *Coordinator) flush(
	ctx context.Context,
	span trace.Span,
	trigger string,
	browser buffer.Drained[models.BrowserEntry],
	server buffer.Drained[models.ServerEntry],
) (Result, error) {
	start := time.Now()

	contexts := Correlate(browser, server, func(sessionID string) *models.ClientSnapshot {
		snap, _ := c.snapshots.Get(ctx, sessionID)
		return snap
	})
	result := Result{Keys: len(contexts)}
	span.SetAttributes(attribute.Int("flush.keys", result.Keys))

	records, err := c.buildRecords(ctx, contexts)
	if err != nil {
		c.fail(ctx, span, trigger, metrics.OutcomeSerialization, start, len(contexts), err)
		if c.metrics != nil {
			c.metrics.IncSerializationFailures()
		}
		return result, err
	}

	if len(records) == 0 {
		c.observe(trigger, metrics.OutcomeEmpty, start)
		return result, nil
	}

	if err := c.persister.PersistBatch(ctx, records); err != nil {
		err = fmt.Errorf("persist audit batch: %w", err)
		c.fail(ctx, span, trigger, metrics.OutcomePersistence, start, len(records), err)
		return result, err
	}

	result.Persisted = len(records)
	span.SetAttributes(attribute.Int("flush.records", result.Persisted))
	c.observe(trigger, metrics.OutcomePersisted, start)
	if c.metrics != nil {
		c.metrics.AddPersisted(result.Persisted)
	}
	c.logger.InfoContext(ctx, "audit batch persisted",
		"trigger", trigger,
		"records", result.Persisted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// buildRecords serializes each context in order. The session's snapshot is
// evicted once its record is built. The first serialization failure aborts
// the whole call and discards every record built so far.
func (c *Coordinator) buildRecords(ctx context.Context, contexts []models.AuditContext) ([]audit.Record, error) {
	records := make([]audit.Record, 0, len(contexts))
	for _, actx := range contexts {
		payload, err := c.codec(actx)
		if err != nil {
			key := models.NewSessionActionKey(actx.SessionID, actx.Category)
			return nil, fmt.Errorf("%w: key %s: %w", ErrSerialization, key, err)
		}

		records = append(records, audit.Record{
			ID:        c.newID(),
			SessionID: actx.SessionID,
			URL:       actx.RepresentativeURL(),
			Category:  string(actx.Category),
			OriginIP:  actx.OriginIP(),
			Context:   string(payload),
			CreatedAt: c.now(),
		})
		c.snapshots.Remove(ctx, actx.SessionID)
	}
	return records, nil
}

func (c *Coordinator) fail(ctx context.Context, span trace.Span, trigger, outcome string, start time.Time, dropped int, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	c.observe(trigger, outcome, start)
	if c.metrics != nil {
		c.metrics.AddDropped(dropped)
	}
	c.logger.ErrorContext(ctx, "audit flush failed, drained batch dropped",
		"trigger", trigger,
		"outcome", outcome,
		"dropped", dropped,
		"error", err,
	)
}

func (c *Coordinator) observe(trigger, outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveFlush(trigger, outcome, time.Since(start).Seconds())
	}
}

// Package buffer provides the session-scoped action buffer that decouples
// "one entry per user action" from "one write per batch".
//
// A Buffer holds one FIFO per (session id, category) key. Keys live in a
// concurrent map and every FIFO has its own mutex, so producers appending to
// different keys never contend and a drain on one key never blocks another.
//
// A FIFO that a drain empties is retired: it is marked under its own lock and
// removed from the map before the lock is released. An add that lands on a
// retired FIFO retries against the map, so a racing append is never lost and
// never counted twice.
package buffer

import (
	"io"
	"log/slog"
	"sync"

	"sessiontrail/internal/telemetry/classifier"
	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
)

// Item is the constraint for buffered entries. The zero value is treated as
// an absent entry and is never buffered.
type Item interface {
	comparable
	models.Entry
}

// Drained maps each drained key to its entries in insertion order.
type Drained[T Item] map[models.SessionActionKey][]T

// Count returns the total number of drained entries.
func (d Drained[T]) Count() int {
	n := 0
	for _, entries := range d {
		n += len(entries)
	}
	return n
}

type fifo[T Item] struct {
	mu      sync.Mutex
	entries []T
	retired bool
}

// Buffer is a thread-safe accumulator of entries keyed by SessionActionKey.
type Buffer[T Item] struct {
	origin  string
	fifos   sync.Map // models.SessionActionKey -> *fifo[T]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Buffer.
type Option func(*options)

// WithLogger sets a logger for debug output on rejected input.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates an empty buffer. origin labels metrics and logs
// (metrics.OriginBrowser or metrics.OriginServer).
func New[T Item](origin string, opts ...Option) *Buffer[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Buffer[T]{
		origin:  origin,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Add buffers a single entry under its classified key.
// Blank or sentinel session ids and zero-value entries are silently ignored.
func (b *Buffer[T]) Add(sessionID string, entry T) {
	var zero T
	if !models.IsBufferableSession(sessionID) || entry == zero {
		b.reject(sessionID)
		return
	}
	b.append(sessionID, entry)
}

// AddBatch buffers every entry of batch in order. Each entry is classified on
// its own, so one batch may feed several keys of the same session.
func (b *Buffer[T]) AddBatch(sessionID string, batch []T) {
	if !models.IsBufferableSession(sessionID) || len(batch) == 0 {
		b.reject(sessionID)
		return
	}
	var zero T
	for _, entry := range batch {
		if entry == zero {
			b.reject(sessionID)
			continue
		}
		b.append(sessionID, entry)
	}
}

func (b *Buffer[T]) append(sessionID string, entry T) {
	key := models.NewSessionActionKey(sessionID, classifier.Classify(entry.Descriptor()))
	for {
		f := b.load(key)
		f.mu.Lock()
		if f.retired {
			f.mu.Unlock()
			continue
		}
		f.entries = append(f.entries, entry)
		f.mu.Unlock()
		break
	}
	if b.metrics != nil {
		b.metrics.IncBuffered(b.origin)
	}
}

func (b *Buffer[T]) load(key models.SessionActionKey) *fifo[T] {
	if v, ok := b.fifos.Load(key); ok {
		return v.(*fifo[T])
	}
	v, _ := b.fifos.LoadOrStore(key, &fifo[T]{})
	return v.(*fifo[T])
}

func (b *Buffer[T]) reject(sessionID string) {
	b.logger.Debug("entry not buffered",
		"origin", b.origin,
		"session_id", sessionID,
	)
	if b.metrics != nil {
		b.metrics.IncRejected(b.origin)
	}
}

// DrainIfThresholdMet removes up to threshold of the oldest entries from every
// key of category holding at least threshold entries. Keys below threshold are
// left untouched and are absent from the result. The length check and the
// removal happen under the key's lock.
func (b *Buffer[T]) DrainIfThresholdMet(category models.ActionCategory, threshold int) Drained[T] {
	out := make(Drained[T])
	if threshold <= 0 {
		return out
	}
	b.fifos.Range(func(k, v any) bool {
		key := k.(models.SessionActionKey)
		if key.Category != category {
			return true
		}
		if entries := b.take(key, v.(*fifo[T]), threshold, threshold); len(entries) > 0 {
			out[key] = entries
		}
		return true
	})
	b.recordDrained(out)
	return out
}

// DrainAll removes and returns every buffered entry.
func (b *Buffer[T]) DrainAll() Drained[T] {
	out := make(Drained[T])
	b.fifos.Range(func(k, v any) bool {
		key := k.(models.SessionActionKey)
		if entries := b.take(key, v.(*fifo[T]), 1, 0); len(entries) > 0 {
			out[key] = entries
		}
		return true
	})
	b.recordDrained(out)
	return out
}

// take removes up to limit entries (all when limit is 0) from f if it holds at
// least atLeast entries. An emptied FIFO is retired and unlinked from the map.
func (b *Buffer[T]) take(key models.SessionActionKey, f *fifo[T], atLeast, limit int) []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.retired {
		return nil
	}
	n := len(f.entries)
	if n == 0 {
		b.retire(key, f)
		return nil
	}
	if n < atLeast {
		return nil
	}
	if limit == 0 || limit > n {
		limit = n
	}

	taken := make([]T, limit)
	copy(taken, f.entries[:limit])
	if limit == n {
		f.entries = nil
		b.retire(key, f)
	} else {
		f.entries = append([]T(nil), f.entries[limit:]...)
	}
	return taken
}

// retire must be called with f.mu held.
func (b *Buffer[T]) retire(key models.SessionActionKey, f *fifo[T]) {
	f.retired = true
	b.fifos.CompareAndDelete(key, f)
}

func (b *Buffer[T]) recordDrained(out Drained[T]) {
	if b.metrics == nil || len(out) == 0 {
		return
	}
	b.metrics.AddDrained(b.origin, out.Count())
}

// Len returns the number of entries currently buffered across all keys.
func (b *Buffer[T]) Len() int {
	total := 0
	b.fifos.Range(func(_, v any) bool {
		f := v.(*fifo[T])
		f.mu.Lock()
		total += len(f.entries)
		f.mu.Unlock()
		return true
	})
	return total
}

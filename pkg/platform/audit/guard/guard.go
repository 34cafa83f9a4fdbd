// Package guard wraps an audit.Store with a circuit breaker.
//
// While the backend keeps failing, batches are rejected up front with
// sentinel.ErrUnavailable instead of piling more load onto it. Rejected
// batches are not retried or re-buffered; like any persistence failure the
// batch is terminal.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	audit "sessiontrail/pkg/platform/audit"
	"sessiontrail/pkg/platform/sentinel"
)

// Store decorates an audit.Store with a circuit breaker.
type Store struct {
	next    audit.Store
	breaker *CircuitBreaker
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Store.
type Option func(*Store)

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(s *Store) {
		s.breaker = cb
	}
}

// WithLogger sets a logger for breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New wraps next.
func New(next audit.Store, opts ...Option) (*Store, error) {
	if next == nil {
		return nil, errors.New("audit store is required")
	}
	s := &Store{next: next}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = NewCircuitBreaker(0, 0)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// PersistBatch forwards the batch unless the circuit is open.
func (s *Store) PersistBatch(ctx context.Context, records []audit.Record) error {
	if !s.breaker.Allow() {
		if s.metrics != nil {
			s.metrics.IncBatchesRejected()
		}
		s.logger.WarnContext(ctx, "audit batch rejected, circuit open",
			"records", len(records),
		)
		return fmt.Errorf("audit store circuit open: %w", sentinel.ErrUnavailable)
	}

	if err := s.next.PersistBatch(ctx, records); err != nil {
		wasOpen := s.breaker.IsOpen()
		open := s.breaker.RecordFailure()
		if s.metrics != nil {
			s.metrics.IncPersistFailures()
			s.metrics.SetCircuitBreakerState(open)
		}
		if open && !wasOpen {
			s.logger.ErrorContext(ctx, "audit store circuit opened",
				"error", err,
			)
		}
		return err
	}

	if s.breaker.IsOpen() {
		s.logger.InfoContext(ctx, "audit store circuit closed")
	}
	s.breaker.RecordSuccess()
	if s.metrics != nil {
		s.metrics.SetCircuitBreakerState(false)
	}
	return nil
}

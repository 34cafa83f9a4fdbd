// Package snapshot stores one client environment snapshot per session.
package snapshot

import (
	"context"
	"sync"

	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
)

// InMemoryStore is a process-local SnapshotStore. Writes use LoadOrStore so
// that the first snapshot written for a session is the one kept, however
// many producers race.
type InMemoryStore struct {
	snapshots sync.Map // string -> models.ClientSnapshot
	metrics   *metrics.Metrics
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithInMemoryMetrics sets the metrics collector.
func WithInMemoryMetrics(m *metrics.Metrics) InMemoryOption {
	return func(s *InMemoryStore) {
		s.metrics = m
	}
}

// NewInMemoryStore creates an empty snapshot store.
func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores a copy of snapshot unless the session already has one.
func (s *InMemoryStore) Add(_ context.Context, sessionID string, snapshot *models.ClientSnapshot) {
	if snapshot == nil || !models.IsBufferableSession(sessionID) {
		return
	}
	if _, loaded := s.snapshots.LoadOrStore(sessionID, *snapshot); !loaded && s.metrics != nil {
		s.metrics.IncSnapshotsStored()
	}
}

// Get returns a copy of the session's snapshot.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*models.ClientSnapshot, bool) {
	v, ok := s.snapshots.Load(sessionID)
	if !ok {
		return nil, false
	}
	snap := v.(models.ClientSnapshot)
	return &snap, true
}

// Remove evicts the session's snapshot.
func (s *InMemoryStore) Remove(_ context.Context, sessionID string) {
	s.snapshots.Delete(sessionID)
}

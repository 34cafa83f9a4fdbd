package memory

import (
	"context"
	"sync"

	audit "sessiontrail/pkg/platform/audit"
)

// InMemoryStore keeps persisted batches in process memory. It backs local
// development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []audit.Record
	batches int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.batches = 0
}

// PersistBatch appends the batch. Empty batches are accepted and not counted.
func (s *InMemoryStore) PersistBatch(_ context.Context, records []audit.Record) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	s.batches++
	return nil
}

// ListAll returns every persisted record in persistence order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record{}, s.records...), nil
}

// ListBySession returns the records persisted for one session.
func (s *InMemoryStore) ListBySession(_ context.Context, sessionID string) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Record
	for _, r := range s.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListRecent returns the last N persisted records.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.records) - limit
	if start < 0 {
		start = 0
	}
	return append([]audit.Record{}, s.records[start:]...), nil
}

// Batches returns how many non-empty batches were persisted.
func (s *InMemoryStore) Batches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches
}

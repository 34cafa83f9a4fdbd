// Package audit defines the persisted unit of session telemetry and the
// persistence boundary every backend implements.
package audit

import (
	"context"
	"time"
)

// Record is one persisted audit entry: the correlated activity of one
// (session, category) key from a single flush.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
	Category  string    `json:"category"`
	OriginIP  string    `json:"originIp"`
	Context   string    `json:"context"` // serialized correlation context (JSON)
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists a batch of records. A batch is persisted as a whole or the
// call fails; implementations do not retry.
type Store interface {
	PersistBatch(ctx context.Context, records []Record) error
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, records []Record) error

// PersistBatch calls f.
func (f StoreFunc) PersistBatch(ctx context.Context, records []Record) error {
	return f(ctx, records)
}

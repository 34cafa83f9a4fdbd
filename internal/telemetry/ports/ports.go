// Package ports defines the interfaces the telemetry pipeline consumes.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"sessiontrail/internal/telemetry/models"
	audit "sessiontrail/pkg/platform/audit"
)

// SnapshotStore keeps one client snapshot per session with first-write-wins
// semantics. Implementations never surface errors to producers.
type SnapshotStore interface {
	// Add stores snapshot for sessionID only if none is present yet.
	Add(ctx context.Context, sessionID string, snapshot *models.ClientSnapshot)
	// Get returns the stored snapshot, or nil and false when absent.
	Get(ctx context.Context, sessionID string) (*models.ClientSnapshot, bool)
	// Remove evicts the session's snapshot. Removing an absent snapshot is a no-op.
	Remove(ctx context.Context, sessionID string)
}

// BatchPersister is the persistence boundary. One call persists one flush;
// it neither retries nor persists partially. audit.Store implementations
// satisfy it.
type BatchPersister interface {
	PersistBatch(ctx context.Context, records []audit.Record) error
}

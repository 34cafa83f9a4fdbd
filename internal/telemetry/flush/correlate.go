package flush

import (
	"slices"

	"sessiontrail/internal/telemetry/buffer"
	"sessiontrail/internal/telemetry/models"
)

// SnapshotLookup returns the snapshot for a session, or nil when it has none.
type SnapshotLookup func(sessionID string) *models.ClientSnapshot

// UnionKeys returns every key present in either drained map, sorted so that
// all keys of one session are adjacent.
func UnionKeys(browser buffer.Drained[models.BrowserEntry], server buffer.Drained[models.ServerEntry]) []models.SessionActionKey {
	seen := make(map[models.SessionActionKey]struct{}, len(browser)+len(server))
	keys := make([]models.SessionActionKey, 0, len(browser)+len(server))
	for k := range browser {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for k := range server {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b models.SessionActionKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return keys
}

// Correlate builds one AuditContext per key of the union of both drained maps.
// A key present on one side only gets an empty list for the other side.
// lookup is consulted once per session; every key of that session shares the
// result.
func Correlate(
	browser buffer.Drained[models.BrowserEntry],
	server buffer.Drained[models.ServerEntry],
	lookup SnapshotLookup,
) []models.AuditContext {
	keys := UnionKeys(browser, server)
	contexts := make([]models.AuditContext, 0, len(keys))
	snapshots := make(map[string]*models.ClientSnapshot)

	for _, key := range keys {
		snap, ok := snapshots[key.SessionID]
		if !ok && lookup != nil {
			snap = lookup(key.SessionID)
			snapshots[key.SessionID] = snap
		}

		browserEntries := browser[key]
		if browserEntries == nil {
			browserEntries = []models.BrowserEntry{}
		}
		serverEntries := server[key]
		if serverEntries == nil {
			serverEntries = []models.ServerEntry{}
		}

		contexts = append(contexts, models.AuditContext{
			SessionID:      key.SessionID,
			Category:       key.Category,
			BrowserEntries: browserEntries,
			ServerEntries:  serverEntries,
			Snapshot:       snap,
		})
	}
	return contexts
}

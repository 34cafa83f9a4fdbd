// Package sqlite persists audit batches to a local SQLite file for
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	audit "sessiontrail/pkg/platform/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  url TEXT NOT NULL,
  category TEXT NOT NULL,
  origin_ip TEXT NOT NULL,
  context TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_records_session ON audit_records(session_id, created_at);
`

// Store implements audit.Store on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create audit db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// PersistBatch writes the batch in one transaction.
func (s *Store) PersistBatch(ctx context.Context, records []audit.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit batch: %w", err)
	}
	for _, r := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO audit_records (id, session_id, url, category, origin_ip, context, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);`,
			r.ID,
			r.SessionID,
			r.URL,
			r.Category,
			r.OriginIP,
			r.Context,
			r.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert audit record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit batch: %w", err)
	}
	return nil
}

// ListBySession returns the records of one session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]audit.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, url, category, origin_ip, context, created_at
FROM audit_records
WHERE session_id = ?
ORDER BY created_at ASC;`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		var (
			r       audit.Record
			created string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.URL, &r.Category, &r.OriginIP, &r.Context, &created); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

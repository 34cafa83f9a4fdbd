package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "sessiontrail/pkg/platform/audit"
	txcontext "sessiontrail/pkg/platform/tx"
)

// Schema creates the audit_records table. Deployments normally run it as a
// migration; EnsureSchema applies it for development setups.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	url         TEXT NOT NULL,
	category    TEXT NOT NULL,
	origin_ip   TEXT NOT NULL,
	context     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_records_session ON audit_records (session_id, created_at);
`

const insertRecord = `
	INSERT INTO audit_records (id, session_id, url, category, origin_ip, context, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
`

// Store implements audit.Store on PostgreSQL. Each batch is written in one
// transaction so a flush is persisted entirely or not at all.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// PersistBatch inserts every record of the batch in one transaction. When ctx
// carries a transaction the records join it.
func (s *Store) PersistBatch(ctx context.Context, records []audit.Record) error {
	if len(records) == 0 {
		return nil
	}
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, r := range records {
			_, err := tx.ExecContext(ctx, insertRecord,
				r.ID,
				r.SessionID,
				r.URL,
				r.Category,
				r.OriginIP,
				r.Context,
				r.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert audit record %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist audit batch: %w", err)
	}
	return nil
}

// ListBySession returns the records of one session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]audit.Record, error) {
	query := `
		SELECT id, session_id, url, category, origin_ip, context::text, created_at
		FROM audit_records
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListRecent returns the N most recent records.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	query := `
		SELECT id, session_id, url, category, origin_ip, context::text, created_at
		FROM audit_records
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record
	for rows.Next() {
		var r audit.Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.URL, &r.Category, &r.OriginIP, &r.Context, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

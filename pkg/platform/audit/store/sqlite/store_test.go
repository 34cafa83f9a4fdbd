package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "sessiontrail/pkg/platform/audit"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	store, err := Open(filepath.Join(s.T().TempDir(), "nested", "audit.db"))
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func record(id, sessionID string, at time.Time) audit.Record {
	return audit.Record{
		ID:        id,
		SessionID: sessionID,
		URL:       "https://app.example.com/cart",
		Category:  "read",
		OriginIP:  "203.0.113.7",
		Context:   `{"sessionId":"` + sessionID + `"}`,
		CreatedAt: at,
	}
}

func (s *SQLiteStoreSuite) TestOpen() {
	s.Run("blank path rejected", func() {
		_, err := Open("  ")
		s.Error(err)
		s.Contains(err.Error(), "path is required")
	})
}

func (s *SQLiteStoreSuite) TestPersistBatch() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Run("persists and lists in order", func() {
		err := s.store.PersistBatch(s.ctx, []audit.Record{
			record("r2", "s1", base.Add(time.Second)),
			record("r1", "s1", base),
			record("r3", "s2", base),
		})
		s.Require().NoError(err)

		records, err := s.store.ListBySession(s.ctx, "s1")
		s.Require().NoError(err)
		s.Require().Len(records, 2)
		s.Equal("r1", records[0].ID)
		s.Equal("r2", records[1].ID)
		s.True(base.Equal(records[0].CreatedAt))
		s.Equal(`{"sessionId":"s1"}`, records[0].Context)
	})

	s.Run("duplicate ids are ignored", func() {
		s.Require().NoError(s.store.PersistBatch(s.ctx, []audit.Record{record("r1", "s1", base)}))
		records, err := s.store.ListBySession(s.ctx, "s1")
		s.Require().NoError(err)
		s.Len(records, 2)
	})

	s.Run("empty batch is a no-op", func() {
		s.NoError(s.store.PersistBatch(s.ctx, nil))
	})
}

package snapshot

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store   *InMemoryStore
	metrics *metrics.Metrics
	ctx     context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = NewInMemoryStore(WithInMemoryMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestAdd() {
	s.Run("first write wins", func() {
		s.store.Add(s.ctx, "s2", &models.ClientSnapshot{Browser: "Chrome"})
		s.store.Add(s.ctx, "s2", &models.ClientSnapshot{Browser: "Firefox"})

		snap, ok := s.store.Get(s.ctx, "s2")
		s.Require().True(ok)
		s.Equal("Chrome", snap.Browser)
		s.Equal(1.0, promtest.ToFloat64(s.metrics.SnapshotsStored))
	})

	s.Run("nil snapshot is ignored", func() {
		s.store.Add(s.ctx, "s-nil", nil)
		_, ok := s.store.Get(s.ctx, "s-nil")
		s.False(ok)
	})

	s.Run("blank and sentinel sessions are ignored", func() {
		s.store.Add(s.ctx, "", &models.ClientSnapshot{Browser: "Chrome"})
		s.store.Add(s.ctx, "unknown", &models.ClientSnapshot{Browser: "Chrome"})
		_, ok := s.store.Get(s.ctx, "")
		s.False(ok)
		_, ok = s.store.Get(s.ctx, "unknown")
		s.False(ok)
	})

	s.Run("stored snapshot is isolated from caller mutation", func() {
		snap := &models.ClientSnapshot{Browser: "Safari"}
		s.store.Add(s.ctx, "s-copy", snap)
		snap.Browser = "mutated"

		got, ok := s.store.Get(s.ctx, "s-copy")
		s.Require().True(ok)
		s.Equal("Safari", got.Browser)

		got.Browser = "mutated again"
		again, _ := s.store.Get(s.ctx, "s-copy")
		s.Equal("Safari", again.Browser)
	})
}

func (s *InMemoryStoreSuite) TestRemove() {
	s.store.Add(s.ctx, "s1", &models.ClientSnapshot{OS: "Linux"})

	s.store.Remove(s.ctx, "s1")
	_, ok := s.store.Get(s.ctx, "s1")
	s.False(ok)

	s.NotPanics(func() { s.store.Remove(s.ctx, "s1") })
	s.NotPanics(func() { s.store.Remove(s.ctx, "never-seen") })

	s.store.Add(s.ctx, "s1", &models.ClientSnapshot{OS: "macOS"})
	snap, ok := s.store.Get(s.ctx, "s1")
	s.Require().True(ok)
	s.Equal("macOS", snap.OS)
}

func (s *InMemoryStoreSuite) TestConcurrentAdd() {
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			s.store.Add(s.ctx, "race", &models.ClientSnapshot{Browser: fmt.Sprintf("b-%d", i)})
		})
	}
	wg.Wait()

	snap, ok := s.store.Get(s.ctx, "race")
	s.Require().True(ok)
	s.NotEmpty(snap.Browser)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.SnapshotsStored))
}

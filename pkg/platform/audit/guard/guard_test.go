package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	audit "sessiontrail/pkg/platform/audit"
	"sessiontrail/pkg/platform/sentinel"
)

type GuardSuite struct {
	suite.Suite
	calls   int
	failing bool
	now     time.Time
	breaker *CircuitBreaker
	metrics *Metrics
	store   *Store
	ctx     context.Context
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.calls = 0
	s.failing = false
	s.now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s.ctx = context.Background()

	s.breaker = NewCircuitBreaker(2, time.Minute)
	s.breaker.now = func() time.Time { return s.now }
	s.metrics = NewMetrics(prometheus.NewRegistry())

	backend := audit.StoreFunc(func(context.Context, []audit.Record) error {
		s.calls++
		if s.failing {
			return errors.New("backend down")
		}
		return nil
	})

	var err error
	s.store, err = New(backend, WithBreaker(s.breaker), WithMetrics(s.metrics))
	s.Require().NoError(err)
}

func (s *GuardSuite) batch() []audit.Record {
	return []audit.Record{{ID: "r1"}}
}

func (s *GuardSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
	s.Contains(err.Error(), "audit store is required")
}

func (s *GuardSuite) TestPassThroughWhenHealthy() {
	s.NoError(s.store.PersistBatch(s.ctx, s.batch()))
	s.Equal(1, s.calls)
	s.False(s.breaker.IsOpen())
}

func (s *GuardSuite) TestOpensAfterThreshold() {
	s.failing = true

	s.Error(s.store.PersistBatch(s.ctx, s.batch()))
	s.False(s.breaker.IsOpen())
	s.Error(s.store.PersistBatch(s.ctx, s.batch()))
	s.True(s.breaker.IsOpen())
	s.Equal(1.0, promtest.ToFloat64(s.metrics.CircuitBreakerState))

	err := s.store.PersistBatch(s.ctx, s.batch())
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.Equal(2, s.calls, "open circuit must not reach the backend")
	s.Equal(1.0, promtest.ToFloat64(s.metrics.BatchesRejected))
	s.Equal(2.0, promtest.ToFloat64(s.metrics.PersistFailures))
}

func (s *GuardSuite) TestHalfOpenProbe() {
	s.failing = true
	_ = s.store.PersistBatch(s.ctx, s.batch())
	_ = s.store.PersistBatch(s.ctx, s.batch())
	s.Require().True(s.breaker.IsOpen())

	s.Run("failed probe re-opens", func() {
		s.now = s.now.Add(2 * time.Minute)
		s.Error(s.store.PersistBatch(s.ctx, s.batch()))
		s.Equal(3, s.calls)
		s.True(s.breaker.IsOpen())
		s.ErrorIs(s.store.PersistBatch(s.ctx, s.batch()), sentinel.ErrUnavailable)
	})

	s.Run("successful probe closes", func() {
		s.failing = false
		s.now = s.now.Add(2 * time.Minute)
		s.NoError(s.store.PersistBatch(s.ctx, s.batch()))
		s.False(s.breaker.IsOpen())
		s.Equal(0.0, promtest.ToFloat64(s.metrics.CircuitBreakerState))
	})
}

func (s *GuardSuite) TestReset() {
	s.failing = true
	_ = s.store.PersistBatch(s.ctx, s.batch())
	_ = s.store.PersistBatch(s.ctx, s.batch())
	s.Require().True(s.breaker.IsOpen())

	s.breaker.Reset()
	s.True(s.breaker.Allow())
}

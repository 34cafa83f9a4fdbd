package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessiontrail/internal/telemetry/flush"
	"sessiontrail/internal/telemetry/models"
)

type recordingFlusher struct {
	mu         sync.Mutex
	categories []models.ActionCategory
	thresholds []int
	full       int
	fullErr    error
}

func (f *recordingFlusher) FlushByCategory(_ context.Context, category models.ActionCategory, threshold int) (flush.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, category)
	f.thresholds = append(f.thresholds, threshold)
	return flush.Result{}, nil
}

func (f *recordingFlusher) FlushAll(context.Context) (flush.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.full++
	return flush.Result{}, f.fullErr
}

func (f *recordingFlusher) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.categories), f.full
}

func validConfig() Config {
	return Config{Threshold: 20, CategoryInterval: "@every 1s", FullFlushInterval: "@every 1h"}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Run("nil flusher", func(t *testing.T) {
		_, err := New(nil, validConfig())
		require.Error(t, err)
	})

	t.Run("non-positive threshold", func(t *testing.T) {
		cfg := validConfig()
		cfg.Threshold = 0
		_, err := New(&recordingFlusher{}, cfg)
		require.ErrorIs(t, err, flush.ErrInvalidThreshold)
	})

	t.Run("bad interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.CategoryInterval = "every now and then"
		_, err := New(&recordingFlusher{}, cfg)
		require.Error(t, err)
	})
}

func TestRunCategoryPassesThreshold(t *testing.T) {
	f := &recordingFlusher{}
	s, err := New(f, validConfig())
	require.NoError(t, err)

	s.RunCategory(context.Background(), models.CategoryUpdate)

	assert.Equal(t, []models.ActionCategory{models.CategoryUpdate}, f.categories)
	assert.Equal(t, []int{20}, f.thresholds)
}

func TestStartRunsEveryCategory(t *testing.T) {
	f := &recordingFlusher{}
	s, err := New(f, validConfig())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool {
		n, _ := f.counts()
		return n >= len(models.AllCategories)
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range models.AllCategories {
		assert.Contains(t, f.categories, c)
	}
}

func TestStopRunsFinalFlushOnce(t *testing.T) {
	f := &recordingFlusher{}
	s, err := New(f, validConfig())
	require.NoError(t, err)

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	_, full := f.counts()
	assert.Equal(t, 1, full)
}

func TestStopSurfacesFinalFlushError(t *testing.T) {
	boom := errors.New("boom")
	f := &recordingFlusher{fullErr: boom}
	s, err := New(f, validConfig())
	require.NoError(t, err)

	err = s.Stop(context.Background())
	require.ErrorIs(t, err, boom)
}

// Package scheduler decides when the flush coordinator runs. Each category
// gets its own threshold job and a separate job drains everything on a longer
// interval. Jobs never overlap with themselves.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"sessiontrail/internal/telemetry/flush"
	"sessiontrail/internal/telemetry/models"
)

// Flusher is the part of flush.Coordinator the scheduler drives.
type Flusher interface {
	FlushByCategory(ctx context.Context, category models.ActionCategory, threshold int) (flush.Result, error)
	FlushAll(ctx context.Context) (flush.Result, error)
}

// Config holds the schedule. Intervals use cron syntax, including the
// "@every <duration>" descriptor.
type Config struct {
	Threshold         int
	CategoryInterval  string
	FullFlushInterval string
}

// Scheduler runs flush jobs on a cron.
type Scheduler struct {
	flusher Flusher
	cfg     Config
	logger  *slog.Logger
	cron    *cron.Cron

	mu      sync.Mutex
	started bool
	stopped bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New builds a Scheduler and registers its jobs without starting them.
func New(flusher Flusher, cfg Config, opts ...Option) (*Scheduler, error) {
	if flusher == nil {
		return nil, errors.New("flusher is required")
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("invalid flush threshold %d: %w", cfg.Threshold, flush.ErrInvalidThreshold)
	}

	s := &Scheduler{flusher: flusher, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cl := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	for _, category := range models.AllCategories {
		if _, err := s.cron.AddFunc(cfg.CategoryInterval, func() { s.RunCategory(context.Background(), category) }); err != nil {
			return nil, fmt.Errorf("schedule %s flush %q: %w", category, cfg.CategoryInterval, err)
		}
	}
	if _, err := s.cron.AddFunc(cfg.FullFlushInterval, func() { s.RunFull(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule full flush %q: %w", cfg.FullFlushInterval, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("flush scheduler started",
		"threshold", s.cfg.Threshold,
		"category_interval", s.cfg.CategoryInterval,
		"full_interval", s.cfg.FullFlushInterval,
	)
}

// Stop halts the cron, waits for running jobs and then runs a final full flush
// so nothing buffered is left behind. It returns ctx.Err() if ctx ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	if started {
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if _, err := s.flusher.FlushAll(ctx); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	s.logger.InfoContext(ctx, "flush scheduler stopped")
	return nil
}

// RunCategory runs one threshold flush for category. Errors are logged; the
// coordinator has already counted them.
func (s *Scheduler) RunCategory(ctx context.Context, category models.ActionCategory) {
	result, err := s.flusher.FlushByCategory(ctx, category, s.cfg.Threshold)
	if err != nil {
		s.logger.ErrorContext(ctx, "category flush failed", "category", category, "error", err)
		return
	}
	if result.Keys > 0 {
		s.logger.DebugContext(ctx, "category flush", "category", category, "keys", result.Keys, "persisted", result.Persisted)
	}
}

// RunFull runs one full flush.
func (s *Scheduler) RunFull(ctx context.Context) {
	result, err := s.flusher.FlushAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "full flush failed", "error", err)
		return
	}
	if result.Keys > 0 {
		s.logger.DebugContext(ctx, "full flush", "keys", result.Keys, "persisted", result.Persisted)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

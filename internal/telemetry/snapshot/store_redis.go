package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
)

const (
	defaultKeyPrefix = "sessiontrail:snapshot:"
	defaultTTL       = 24 * time.Hour
)

// RedisStore is a SnapshotStore shared between server instances. SETNX is the
// insert-if-absent primitive, so first-write-wins holds across processes.
// Redis failures are logged and swallowed: producers never see them, and a
// failed Get behaves like a missing snapshot.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL bounds how long an unflushed snapshot is kept.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets a logger for Redis errors.
func WithLogger(logger *slog.Logger) RedisOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// WithRedisMetrics sets the metrics collector.
func WithRedisMetrics(m *metrics.Metrics) RedisOption {
	return func(s *RedisStore) {
		s.metrics = m
	}
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(client redis.Cmdable, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

// Add stores snapshot unless the session already has one.
func (s *RedisStore) Add(ctx context.Context, sessionID string, snapshot *models.ClientSnapshot) {
	if snapshot == nil || !models.IsBufferableSession(sessionID) {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to encode client snapshot",
			"session_id", sessionID,
			"error", err,
		)
		return
	}
	stored, err := s.client.SetNX(ctx, s.key(sessionID), payload, s.ttl).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "failed to store client snapshot",
			"session_id", sessionID,
			"error", err,
		)
		return
	}
	if stored && s.metrics != nil {
		s.metrics.IncSnapshotsStored()
	}
}

// Get returns the session's snapshot.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.ClientSnapshot, bool) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load client snapshot",
			"session_id", sessionID,
			"error", err,
		)
		return nil, false
	}
	var snap models.ClientSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		s.logger.WarnContext(ctx, "discarding undecodable client snapshot",
			"session_id", sessionID,
			"error", err,
		)
		return nil, false
	}
	return &snap, true
}

// Remove evicts the session's snapshot.
func (s *RedisStore) Remove(ctx context.Context, sessionID string) {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to evict client snapshot",
			"session_id", sessionID,
			"error", err,
		)
	}
}

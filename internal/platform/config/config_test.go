package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"SESSIONTRAIL_ADDR", "LOG_LEVEL", "LOG_FORMAT", "ADMIN_TOKEN", "AUDIT_BACKEND",
		"KAFKA_BROKERS", "REDIS_URL", "SNAPSHOT_TTL", "FLUSH_THRESHOLD", "FLUSH_INTERVAL",
		"FULL_FLUSH_INTERVAL", "BREAKER_FAILURES", "BREAKER_COOLDOWN",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, BackendMemory, cfg.Audit.Backend)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
	assert.Equal(t, "sessiontrail.audit", cfg.Audit.KafkaTopic)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 24*time.Hour, cfg.Snapshot.TTL)
	assert.Equal(t, 20, cfg.Flush.Threshold)
	assert.Equal(t, "@every 15s", cfg.Flush.Interval)
	assert.Equal(t, "@every 5m", cfg.Flush.FullInterval)
	assert.Equal(t, 5, cfg.Breaker.Failures)
	assert.Equal(t, time.Minute, cfg.Breaker.Cooldown)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSIONTRAIL_ADDR", ":9090")
	t.Setenv("AUDIT_BACKEND", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,k1:9092")
	t.Setenv("FLUSH_THRESHOLD", "50")
	t.Setenv("SNAPSHOT_TTL", "2h")
	t.Setenv("BREAKER_COOLDOWN", "30s")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendKafka, cfg.Audit.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, 50, cfg.Flush.Threshold)
	assert.Equal(t, 2*time.Hour, cfg.Snapshot.TTL)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Cooldown)
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("FLUSH_THRESHOLD", "-3")
	t.Setenv("BREAKER_FAILURES", "many")
	t.Setenv("SNAPSHOT_TTL", "forever")

	cfg := FromEnv()
	assert.Equal(t, 20, cfg.Flush.Threshold)
	assert.Equal(t, 5, cfg.Breaker.Failures)
	assert.Equal(t, 24*time.Hour, cfg.Snapshot.TTL)
}

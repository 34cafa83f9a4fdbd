// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "sessiontrail/pkg/platform/strings"
)

// Audit backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendKafka    = "kafka"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	LogLevel   string
	LogFormat  string
	AdminToken string

	Audit    AuditConfig
	Redis    RedisConfig
	Snapshot SnapshotConfig
	Flush    FlushConfig
	Breaker  BreakerConfig
}

// AuditConfig selects and configures the persistence backend.
type AuditConfig struct {
	Backend      string
	DatabaseURL  string
	SQLitePath   string
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig configures the Redis client. An empty URL keeps snapshots in
// process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SnapshotConfig configures the snapshot store.
type SnapshotConfig struct {
	TTL time.Duration
}

// FlushConfig configures the flush scheduler.
type FlushConfig struct {
	Threshold    int
	Interval     string
	FullInterval string
}

// BreakerConfig configures the persistence circuit breaker.
type BreakerConfig struct {
	Failures int
	Cooldown time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Invalid numeric and duration values fall back to their defaults.
func FromEnv() Server {
	return Server{
		Addr:       envDefault("SESSIONTRAIL_ADDR", ":8080"),
		LogLevel:   envDefault("LOG_LEVEL", "info"),
		LogFormat:  envDefault("LOG_FORMAT", "json"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		Audit: AuditConfig{
			Backend:      strings.ToLower(envDefault("AUDIT_BACKEND", BackendMemory)),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			SQLitePath:   envDefault("SQLITE_PATH", "data/audit.db"),
			KafkaBrokers: pstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			KafkaTopic:   envDefault("KAFKA_TOPIC", "sessiontrail.audit"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntDefault("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntDefault("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationDefault("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationDefault("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationDefault("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Snapshot: SnapshotConfig{
			TTL: envDurationDefault("SNAPSHOT_TTL", 24*time.Hour),
		},
		Flush: FlushConfig{
			Threshold:    envIntDefault("FLUSH_THRESHOLD", 20),
			Interval:     envDefault("FLUSH_INTERVAL", "@every 15s"),
			FullInterval: envDefault("FULL_FLUSH_INTERVAL", "@every 5m"),
		},
		Breaker: BreakerConfig{
			Failures: envIntDefault("BREAKER_FAILURES", 5),
			Cooldown: envDurationDefault("BREAKER_COOLDOWN", time.Minute),
		},
	}
}

func envDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

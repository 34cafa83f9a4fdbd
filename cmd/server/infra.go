package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"sessiontrail/internal/platform/config"
	platformredis "sessiontrail/internal/platform/redis"
	"sessiontrail/internal/telemetry/handler"
	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/ports"
	"sessiontrail/internal/telemetry/snapshot"
	audit "sessiontrail/pkg/platform/audit"
	"sessiontrail/pkg/platform/audit/guard"
	"sessiontrail/pkg/platform/audit/publishers/kafka"
	auditmemory "sessiontrail/pkg/platform/audit/store/memory"
	auditpostgres "sessiontrail/pkg/platform/audit/store/postgres"
	auditsqlite "sessiontrail/pkg/platform/audit/store/sqlite"
)

// infra holds the external collaborators chosen by configuration.
type infra struct {
	snapshots    ports.SnapshotStore
	persister    ports.BatchPersister
	healthChecks map[string]handler.HealthCheck
	closers      []io.Closer
}

func (d *infra) close(log *slog.Logger) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			log.Warn("close dependency", "error", err)
		}
	}
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, m *metrics.Metrics) (*infra, error) {
	d := &infra{healthChecks: map[string]handler.HealthCheck{}}

	snapshots, err := buildSnapshotStore(ctx, cfg, log, m, d)
	if err != nil {
		d.close(log)
		return nil, err
	}
	d.snapshots = snapshots

	store, err := buildAuditStore(ctx, cfg.Audit, d)
	if err != nil {
		d.close(log)
		return nil, err
	}
	guarded, err := guard.New(store,
		guard.WithBreaker(guard.NewCircuitBreaker(cfg.Breaker.Failures, cfg.Breaker.Cooldown)),
		guard.WithLogger(log),
		guard.WithMetrics(guard.NewMetrics(reg)),
	)
	if err != nil {
		d.close(log)
		return nil, err
	}
	d.persister = guarded
	return d, nil
}

func buildSnapshotStore(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics, d *infra) (ports.SnapshotStore, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("snapshot store: in-memory")
		return snapshot.NewInMemoryStore(snapshot.WithInMemoryMetrics(m)), nil
	}
	d.closers = append(d.closers, client)
	d.healthChecks["redis"] = client.Health

	log.Info("snapshot store: redis", "ttl", cfg.Snapshot.TTL.String())
	return snapshot.NewRedisStore(client,
		snapshot.WithTTL(cfg.Snapshot.TTL),
		snapshot.WithLogger(log),
		snapshot.WithRedisMetrics(m),
	)
}

func buildAuditStore(ctx context.Context, cfg config.AuditConfig, d *infra) (audit.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return auditmemory.NewInMemoryStore(), nil

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s audit backend", cfg.Backend)
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		d.closers = append(d.closers, db)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		d.healthChecks["postgres"] = db.PingContext
		store := auditpostgres.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendSQLite:
		store, err := auditsqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, store)
		return store, nil

	case config.BackendKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required for the %s audit backend", cfg.Backend)
		}
		publisher, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, publisher)
		return publisher, nil
	}
	return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"sessiontrail/internal/platform/config"
	"sessiontrail/internal/platform/httpserver"
	"sessiontrail/internal/platform/logger"
	platformmetrics "sessiontrail/internal/platform/metrics"
	"sessiontrail/internal/platform/middleware"
	"sessiontrail/internal/telemetry/buffer"
	"sessiontrail/internal/telemetry/capture"
	"sessiontrail/internal/telemetry/flush"
	"sessiontrail/internal/telemetry/handler"
	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
	"sessiontrail/internal/telemetry/scheduler"
	"sessiontrail/pkg/platform/middleware/metadata"
	"sessiontrail/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// process lifecycle small. Pipeline logic lives in internal/telemetry.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("sessiontrail exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	telemetryMetrics := metrics.New(reg)

	deps, err := buildInfra(ctx, cfg, log, reg, telemetryMetrics)
	if err != nil {
		return err
	}
	defer deps.close(log)

	browser := buffer.New[models.BrowserEntry](metrics.OriginBrowser,
		buffer.WithLogger(log), buffer.WithMetrics(telemetryMetrics))
	server := buffer.New[models.ServerEntry](metrics.OriginServer,
		buffer.WithLogger(log), buffer.WithMetrics(telemetryMetrics))

	coordinator, err := flush.New(browser, server, deps.snapshots, deps.persister,
		flush.WithLogger(log), flush.WithMetrics(telemetryMetrics))
	if err != nil {
		return err
	}

	sched, err := scheduler.New(coordinator, scheduler.Config{
		Threshold:         cfg.Flush.Threshold,
		CategoryInterval:  cfg.Flush.Interval,
		FullFlushInterval: cfg.Flush.FullInterval,
	}, scheduler.WithLogger(log))
	if err != nil {
		return err
	}

	telemetryHandler := handler.New(browser, deps.snapshots,
		handler.WithLogger(log),
		handler.WithAdmin(coordinator, cfg.AdminToken),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(platformmetrics.New(reg)))
	handler.RegisterOps(r, reg, deps.healthChecks)
	r.Group(func(r chi.Router) {
		r.Use(capture.Middleware(server))
		telemetryHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	sched.Start()
	g.Go(func() error {
		log.Info("starting sessiontrail", "addr", cfg.Addr, "audit_backend", cfg.Audit.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		// Producers are quiet once the server is down; drain what is left.
		return sched.Stop(shutdownCtx)
	})

	return g.Wait()
}

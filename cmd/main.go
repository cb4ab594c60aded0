// Command rota serves the delivery operations analytics API: it loads one
// dataset snapshot, wires the engine, and exposes the read-only HTTP
// surface with Prometheus metrics.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mbaleato/rota/internal/adapters/batch"
	"github.com/mbaleato/rota/internal/adapters/http/api"
	"github.com/mbaleato/rota/internal/adapters/ingest"
	"github.com/mbaleato/rota/internal/adapters/repository"
	"github.com/mbaleato/rota/internal/app"
	"github.com/mbaleato/rota/internal/config"
	"github.com/mbaleato/rota/pkg/logger"
	"github.com/mbaleato/rota/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	// The custom vectors cover what this service cares about; the default
	// Go and process collectors would only add noise.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}

	pol, err := app.PolicyFromConfig(cfg)
	if err != nil {
		log.Error(ctx, "invalid policy configuration", logger.Error(err))
		return
	}

	m := metrics.New(metrics.WithNamespace("rota"))
	engine := app.NewEngine(app.WithPolicy(pol), app.WithMetrics(m))
	store := repository.New()

	var runnerOpts []batch.Option
	if cfg.BatchWorkers > 0 {
		runnerOpts = append(runnerOpts, batch.WithWorkers(cfg.BatchWorkers))
	}
	svc := app.NewService(engine, store,
		app.WithServiceLogger(log.Named("service")),
		app.WithServiceMetrics(m),
		app.WithRunner(batch.New(runnerOpts...)),
	)

	if cfg.DatasetPath != "" {
		raw, err := ingest.ReadFile(cfg.DatasetPath)
		if err != nil {
			log.Error(ctx, "failed to read dataset", logger.String("path", cfg.DatasetPath), logger.Error(err))
			return
		}
		if err := svc.Load(ctx, raw); err != nil {
			log.Error(ctx, "failed to load dataset", logger.Error(err))
			return
		}
	} else {
		log.Warn(ctx, "no dataset_path configured; serving an empty snapshot")
	}

	mux := http.NewServeMux()
	api.NewServer(svc, m).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", logger.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down")
	case err := <-errCh:
		log.Error(ctx, "server failed", logger.Error(err))
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown failed", logger.Error(err))
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"clinic/internal/platform/config"
	"clinic/internal/platform/httpserver"
	"clinic/internal/platform/logger"
	"clinic/internal/platform/metrics"
	"clinic/internal/platform/postgres"
	recordshandler "clinic/internal/records/handler"
	recordsmetrics "clinic/internal/records/metrics"
	recordsservice "clinic/internal/records/service"
	recordsmemory "clinic/internal/records/store/memory"
	recordspostgres "clinic/internal/records/store/postgres"
	"clinic/pkg/platform/audit"
	kafkapublisher "clinic/pkg/platform/audit/publishers/kafka"
	auditmemory "clinic/pkg/platform/audit/store/memory"
	auditpostgres "clinic/pkg/platform/audit/store/postgres"
	"clinic/pkg/platform/httputil"
)

// main wires the record stores, the consistency engine and the HTTP surface,
// then blocks until a shutdown signal arrives.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var db *sql.DB
	if !cfg.InMemory() {
		db, err = postgres.Open(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.MaxOpenConns)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	auditPublisher, closeAudit, err := buildAuditPublisher(cfg, db)
	if err != nil {
		return err
	}
	defer closeAudit()

	opts := []recordsservice.Option{
		recordsservice.WithLogger(log),
		recordsservice.WithAuditPublisher(auditPublisher),
		recordsservice.WithMetrics(recordsmetrics.New(reg)),
		recordsservice.WithTracer(otel.Tracer("clinic/records")),
	}
	var stores recordsservice.Stores
	if db != nil {
		pg := recordspostgres.New(db)
		stores = recordsservice.Stores{
			Patients:   pg.Patients(),
			Doctors:    pg.Doctors(),
			Cashiers:   pg.Cashiers(),
			Users:      pg.Users(),
			Operations: pg.Operations(),
			Reports:    pg.Reports(),
			Payments:   pg.Payments(),
			Receipts:   pg.Receipts(),
		}
		opts = append(opts, recordsservice.WithTx(pg))
	} else {
		mem := recordsmemory.New()
		stores = recordsservice.Stores{
			Patients:   mem.Patients(),
			Doctors:    mem.Doctors(),
			Cashiers:   mem.Cashiers(),
			Users:      mem.Users(),
			Operations: mem.Operations(),
			Reports:    mem.Reports(),
			Payments:   mem.Payments(),
			Receipts:   mem.Receipts(),
		}
	}
	records := recordsservice.New(stores, opts...)

	router := chi.NewRouter()
	router.Get("/healthz", healthHandler(db))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	recordshandler.New(records, log, metrics.New(reg), cfg.Server.RequestTimeout).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting clinic records server", "addr", cfg.Server.Addr, "in_memory", cfg.InMemory())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// buildAuditPublisher prefers Kafka, then the database, then memory.
func buildAuditPublisher(cfg config.Config, db *sql.DB) (recordsservice.AuditPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafkapublisher.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka audit publisher: %w", err)
		}
		return p, p.Close, nil
	}
	if db != nil {
		return audit.NewPublisher(auditpostgres.New(db)), func() {}, nil
	}
	return audit.NewPublisher(auditmemory.NewInMemoryStore()), func() {}, nil
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

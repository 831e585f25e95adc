package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pankas/internal/contractor/freshness"
	"pankas/internal/contractor/handler"
	"pankas/internal/contractor/metrics"
	"pankas/internal/contractor/registry"
	"pankas/internal/contractor/service"
	"pankas/internal/contractor/status"
	"pankas/internal/contractor/store"
	"pankas/internal/platform/config"
	"pankas/internal/platform/httpserver"
	"pankas/internal/platform/logger"
	platformredis "pankas/internal/platform/redis"
	"pankas/pkg/platform/events"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	mets := metrics.New()

	contractorStore, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rowCache, err := buildRowCache(cfg, log)
	if err != nil {
		log.Error("row cache init failed", "error", err)
		os.Exit(1)
	}

	registryClient := registry.NewClient(registry.Config{
		BaseURL:           cfg.Registry.BaseURL,
		CompaniesResource: cfg.Registry.CompaniesResource,
		LicensesResource:  cfg.Registry.LicensesResource,
		Timeout:           cfg.Registry.Timeout,
		MaxRetries:        cfg.Registry.MaxRetries,
	}, log, registry.WithRowCache(rowCache), registry.WithMetrics(mets))

	publisher, closePublisher := buildPublisher(cfg, log)
	defer closePublisher()

	svc := service.New(
		contractorStore,
		registryClient,
		status.NewEngine(),
		freshness.NewChecker(cfg.FreshnessZone),
		log,
		service.WithPublisher(publisher),
		service.WithMetrics(mets),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting pankas", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func buildStore(cfg config.Server, log *slog.Logger) (store.ContractorStore, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Warn("no POSTGRES_DSN set, using in-memory store")
		return store.NewInMemory(), func() {}, nil
	}
	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewPostgres(db), func() { db.Close() }, nil
}

func buildRowCache(cfg config.Server, log *slog.Logger) (registry.RowCache, error) {
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return registry.NewInMemoryRowCache(cfg.Registry.RowCacheTTL), nil
	}
	log.Info("using redis row cache")
	return registry.NewRedisRowCache(client.Client, cfg.Registry.RowCacheTTL), nil
}

func buildPublisher(cfg config.Server, log *slog.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewMemoryPublisher(), func() {}
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Warn("kafka publisher unavailable, falling back to memory", "error", err)
		return events.NewMemoryPublisher(), func() {}
	}
	log.Info("publishing outcome events to kafka", "topic", cfg.KafkaTopic)
	return publisher, publisher.Close
}

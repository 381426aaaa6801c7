package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"attribution/internal/aggregator"
	"attribution/internal/cache"
	"attribution/internal/config"
	"attribution/internal/consumer"
	"attribution/internal/handlers"
	"attribution/internal/instrumentation"
	"attribution/internal/reporting"
	"attribution/internal/routing"
	"attribution/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("attribution_service_starting",
		"port", cfg.Port,
		"timeout_ms", cfg.TimeoutMS,
		"database_dsn", cfg.DatabaseDSN,
		"default_strategy", cfg.Strategy,
		"ctv_window_days", cfg.CTVWindowDays,
		"ingest_enabled", cfg.IngestEnabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close(db)

	logger.Info("database_initialized")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := instrumentation.NewMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.PrometheusPort)
		logger.Info("metrics_server_starting", "port", cfg.PrometheusPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()

	// Redis is optional: without it results are not cached and nothing is ingested.
	var redisClient *redis.Client
	var resultCache aggregator.ResultCache
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		resultCache = cache.NewResultCache(redisClient, cfg.ResultCacheTTL, logger)
		logger.Info("result_cache_initialized", "ttl_sec", cfg.ResultCacheTTL.Seconds())
	}

	events := store.NewEventStore(db)

	engine := aggregator.New(events, resultCache, aggregator.Options{
		Timeout: cfg.Timeout(),
		Window:  cfg.CTVWindow,
	}, logger, metrics)

	configs := routing.NewConfigCache(store.NewConfigStore(db), cfg.ConfigCacheTTL, cfg.Strategy, logger, metrics)
	router := routing.NewRouter(configs, store.NewImpressionStore(db), logger, metrics)

	service := reporting.NewService(engine, router, logger)

	if cfg.IngestEnabled {
		hostname, _ := os.Hostname()
		cons, err := consumer.New(ctx, redisClient, consumer.Config{
			StreamKey:     cfg.IngestStreamKey,
			ConsumerGroup: cfg.IngestConsumerGroup,
			ConsumerName:  fmt.Sprintf("attribution-%s", hostname),
			BatchSize:     10,
		}, consumer.StoreHandler(events, metrics), logger)
		if err != nil {
			logger.Error("failed to create consumer", "error", err)
			os.Exit(1)
		}

		go func() {
			if err := cons.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer_failed", "error", err)
			}
		}()
	}

	handler, err := handlers.NewRouter(handlers.RouterConfig{
		Reporter:         service,
		Authorizer:       handlers.NewStaticKeyAuthorizer(cfg.APIKeys),
		Ping:             func(ctx context.Context) error { return store.Ping(ctx, db) },
		DefaultMinVisits: cfg.MinVisitsDefault,
		Timeout:          cfg.Timeout(),
		Logger:           logger,
		Metrics:          metrics,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Timeout() + 5*time.Second,
	}

	go func() {
		logger.Info("http_server_listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutdown_signal_received", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	logger.Info("attribution_service_stopped")
}

// Package main is the entry point for the leaderboard API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
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

	"github.com/onnwee/leaderboard/internal/api"
	"github.com/onnwee/leaderboard/internal/config"
	"github.com/onnwee/leaderboard/internal/leaderboard"
	"github.com/onnwee/leaderboard/internal/middleware"
	"github.com/onnwee/leaderboard/internal/ranking"
	"github.com/onnwee/leaderboard/internal/snapshot"
	"github.com/onnwee/leaderboard/internal/tracing"
)

const serviceName = "leaderboard-api"

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to YAML config file (env vars override)")
	flag.Parse()

	if *help {
		fmt.Println("Leaderboard API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationPath)
	if err != nil {
		// Defaults are returned alongside the error; keep serving.
		logger.Warn("ranking calibration not applied", "error", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = snapshot.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	source, checkers, closeSource, err := buildSource(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	reg := prometheus.NewRegistry()
	var lbMetrics *leaderboard.Metrics
	var httpMetrics *middleware.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		lbMetrics = leaderboard.NewMetrics()
		httpMetrics = middleware.NewMetrics()
		if err := lbMetrics.Register(reg); err != nil {
			return fmt.Errorf("failed to register leaderboard metrics: %w", err)
		}
		if err := httpMetrics.Register(reg); err != nil {
			return fmt.Errorf("failed to register http metrics: %w", err)
		}
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	svc, err := leaderboard.NewService(leaderboard.ServiceConfig{
		Source:  source,
		Engine:  leaderboard.NewEngine(leaderboard.WithWeights(weights)),
		Metrics: lbMetrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	routerCfg := api.RouterConfig{
		Service:        svc,
		Logger:         logger,
		Checkers:       checkers,
		MetricsHandler: metricsHandler,
		HTTPMetrics:    httpMetrics,
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins, MaxAge: 600},
		TracingEnabled: tp.IsEnabled(),
		ServiceName:    serviceName,
	}
	if cfg.SearchRateLimitPerMinute > 0 {
		routerCfg.SearchLimitConfig = middleware.RateLimitConfig{
			RequestsPerWindow: cfg.SearchRateLimitPerMinute,
			WindowDuration:    time.Minute,
		}
		if redisClient != nil {
			routerCfg.SearchLimiter = middleware.NewRedisRateLimitStore(redisClient)
		} else {
			mem := middleware.NewInMemoryRateLimitStore()
			go sweepRateLimits(ctx, mem)
			routerCfg.SearchLimiter = mem
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// buildSource picks the snapshot source (Postgres, then S3, then file) and
// wraps it in the Redis cache when a client is available. The returned close
// function releases anything the source opened.
func buildSource(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (leaderboard.SnapshotSource, map[string]api.HealthChecker, func(), error) {
	var source interface {
		leaderboard.SnapshotSource
		api.HealthChecker
	}
	closeFn := func() {}

	switch {
	case cfg.DatabaseURL != "":
		db, err := snapshot.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn = func() { closeDB(db, logger) }
		source = snapshot.NewPostgresSource(db, logger)
		logger.Info("using postgres snapshot source")
	case cfg.S3Bucket != "":
		s3src, err := snapshot.NewS3Source(snapshot.S3Config{
			Bucket:          cfg.S3Bucket,
			Key:             cfg.S3Key,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		source = s3src
		logger.Info("using object storage snapshot source", "bucket", cfg.S3Bucket, "key", cfg.S3Key)
	default:
		entries, err := snapshot.LoadFile(cfg.SnapshotFile)
		if err != nil {
			return nil, nil, nil, err
		}
		source = snapshot.NewInMemorySource(entries)
		logger.Info("using file snapshot source", "path", cfg.SnapshotFile, "entries", len(entries))
	}

	checkers := map[string]api.HealthChecker{"snapshot": source}
	if redisClient == nil {
		return source, checkers, closeFn, nil
	}

	cache, err := snapshot.NewRedisCache(redisClient, source, snapshot.RedisCacheConfig{
		TTL:    cfg.SnapshotCacheTTL(),
		Logger: logger,
	})
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	checkers["cache"] = cache
	return cache, checkers, closeFn, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// sweepRateLimits drops expired in-memory rate limit windows until ctx ends.
func sweepRateLimits(ctx context.Context, store *middleware.InMemoryRateLimitStore) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Cleanup()
		}
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/phyrestorm/internal/config"
	"github.com/kailas-cloud/phyrestorm/internal/db"
	"github.com/kailas-cloud/phyrestorm/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/phyrestorm/internal/db/redis"
	"github.com/kailas-cloud/phyrestorm/internal/db/sqlite"
	logpkg "github.com/kailas-cloud/phyrestorm/internal/logger"
	"github.com/kailas-cloud/phyrestorm/internal/metrics"
	hitrepo "github.com/kailas-cloud/phyrestorm/internal/repository/hit"
	"github.com/kailas-cloud/phyrestorm/internal/repository/pagecache"
	chiTransport "github.com/kailas-cloud/phyrestorm/internal/transport/chi"
	healthuc "github.com/kailas-cloud/phyrestorm/internal/usecase/health"
	resultsuc "github.com/kailas-cloud/phyrestorm/internal/usecase/results"
	"github.com/kailas-cloud/phyrestorm/internal/version"
)

// migratingStore is a results store that can bring its own schema up to date.
type migratingStore interface {
	db.Store
	Migrate(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting phyrestorm API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Int("path_substitutions", len(cfg.PathSubstitutions)),
	)

	ctx := context.Background()

	storeLogger, err := logpkg.NewStorageLogger(logger, env, cfg.Logging.SQL)
	if err != nil {
		logger.Fatal("Failed to create storage logger", zap.Error(err))
	}

	store, err := openStore(ctx, cfg.Database, storeLogger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal("Database migration failed", zap.Error(err))
		}
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterResultMetrics()

	rules, err := cfg.RewriteRules()
	if err != nil {
		logger.Fatal("Invalid path substitutions", zap.Error(err))
	}

	repo := hitrepo.New(store)
	resultsSvc := resultsuc.New(repo).
		WithPagination(cfg.Paging.DefaultPageSize, cfg.Paging.MaxPageSize).
		WithRewrite(rules).
		WithRecorder(metrics.Recorder{})

	// Pass nil interface (not typed nil pointer!) if the cache is disabled.
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			// Pages are still served from the database.
			logger.Warn("Page cache not ready", zap.Error(err))
		}

		resultsSvc.WithSource(pagecache.New(
			resultsuc.NewFetcher(repo), cache,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.PageCacheTotal, logger,
		))
		cachePinger = cache
		logger.Info("Page cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(resultsSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, logger, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the results store for the configured driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (migratingStore, error) {
	queryTimeout := time.Duration(cfg.QueryTimeoutSec) * time.Second
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.NewStore(sqlite.Config{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			QueryTimeout: queryTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.NewStore(ctx, postgres.Config{
			URL:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			QueryTimeout: queryTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

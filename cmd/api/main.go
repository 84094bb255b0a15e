package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"crypto-resilience-service/internal/application/services"
	"crypto-resilience-service/internal/infrastructure/config"
	"crypto-resilience-service/internal/infrastructure/exchange/binance"
	"crypto-resilience-service/internal/infrastructure/logging"
	"crypto-resilience-service/internal/infrastructure/metrics"
	"crypto-resilience-service/internal/infrastructure/repositories/cache"
	"crypto-resilience-service/internal/infrastructure/resilience"
	"crypto-resilience-service/internal/infrastructure/web/server"
)

const version = "1.0.0"

// @title Crypto Resilience Service API
// @version 1.0
// @description Binance 24h market statistics behind a cache-aside layer with stale fallback and a circuit breaker.
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatalf("crypto-resilience-service: %v", err)
	}
}

func run() error {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.InitializeGlobalLoggers(loggerConfig(cfg)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info(ctx, "Starting crypto resilience service", logging.Fields{
		"version":       version,
		"environment":   config.GetEnvironment(),
		"cache_backend": cfg.Cache.Backend,
		"upstream":      cfg.Upstream.BaseURL,
	})

	backend, err := cache.NewFactory().CreateCache(ctx, cache.ConfigFromSettings(cfg.Cache))
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}
	metrics.SetApplicationInfo(version, cfg.Cache.Backend)

	snapshots := cache.NewSnapshotCache(backend, cfg.Cache.StaleTTL)
	breaker := resilience.NewCircuitBreaker(resilience.Config{
		Name:         cfg.Upstream.Name,
		FailMax:      cfg.Breaker.FailMax,
		ResetTimeout: cfg.Breaker.ResetTimeout,
	})
	client := binance.NewRestClient(binance.ConfigFromSettings(cfg.Upstream))
	fetcher := services.NewResilientFetcher(client, snapshots, breaker, services.OptionsFromSettings(cfg))

	srv := server.NewServer(server.NewRouter(fetcher, cfg.RateLimit), cfg.Server)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	if cfg.Warmup.Enabled {
		g.Go(func() error {
			warmCtx, cancel := context.WithTimeout(gctx, cfg.Warmup.Timeout)
			defer cancel()
			// un warmup fallido no tumba el proceso
			_ = fetcher.Warmup(warmCtx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logging.Info(shutdownCtx, "Server stopped", nil)
		return nil
	})

	return g.Wait()
}

func loggerConfig(cfg *config.Config) *logging.LoggerConfig {
	lc := logging.NewConfig("crypto-resilience-service", version, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format))

	if cfg.Logging.File != "" {
		lc = lc.WithFile(logging.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   true,
		})
	}
	return lc
}

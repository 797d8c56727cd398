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

	"artwaves-catalog/cache"
	"artwaves-catalog/config"
	"artwaves-catalog/database"
	"artwaves-catalog/handlers"
	"artwaves-catalog/logging"
	"artwaves-catalog/router"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	warnDefaults(cfg, logger)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	logger.Info("catalog opened", "backend", cfg.Backend)

	// The handler must see a nil interface, not a nil *cache.Cache.
	var responseCache handlers.ResponseCache
	if cfg.CacheEnabled() {
		c, err := cache.New(ctx, cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, serving uncached", "error", err)
		} else {
			defer c.Close()
			responseCache = c
			logger.Info("redis connected", "addr", cfg.RedisHost+":"+cfg.RedisPort, "ttl", cfg.CacheTTL.String())

			if cfg.CacheWarmInterval > 0 {
				cache.NewWarmer(c, store, cfg.CacheWarmInterval, cfg.CacheTTL, logger).Start(ctx)
			}
		}
	}

	h := handlers.NewHandler(store, responseCache, cfg.CacheTTL, logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupRoutes(h, cfg.JWTSecret, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// warnDefaults logs settings that are only fit for local development.
func warnDefaults(cfg *config.Config, logger *slog.Logger) {
	if cfg.DefaultSecret() {
		logger.Warn("JWT_SECRET is not set, review and admin tokens use the built-in default secret")
	}
}

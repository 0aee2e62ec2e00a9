package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/price-sniffer/internal/config"
	"github.com/Sternrassler/price-sniffer/internal/httpserver"
	"github.com/Sternrassler/price-sniffer/pkg/cache"
	"github.com/Sternrassler/price-sniffer/pkg/logging"
	"github.com/Sternrassler/price-sniffer/pkg/provider"
	"github.com/Sternrassler/price-sniffer/pkg/search"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.LogLevel),
		Pretty:  cfg.LogPretty,
		Output:  os.Stderr,
		Service: "price-sniffer",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := cache.Connect(ctx, cfg.Cache.RedisURL, logging.NewLogger("cache"))
	defer store.Close()

	handler, err := newHandler(cfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build handler")
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.HTTP.Address).
			Str("env", cfg.Env).
			Bool("coalesce", cfg.Cache.Coalesce).
			Msg("Starting price-sniffer server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		return
	}
	logger.Info().Msg("Server stopped")
}

// newHandler wires the provider client and search pipeline behind the router.
func newHandler(cfg *config.Config, store cache.Store) (http.Handler, error) {
	retry := provider.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Provider.MaxAttempts

	client, err := provider.New(provider.Config{
		APIKey:   cfg.Provider.APIKey,
		Endpoint: cfg.Provider.Endpoint,
		Timeout:  cfg.Provider.Timeout,
		Retry:    retry,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider client: %w", err)
	}

	recognizer := search.StubRecognizer{
		Product: cfg.Image.StubQuery,
		Delay:   cfg.Image.StubDelay,
	}

	pipeline, err := search.New(client, store, recognizer, search.Config{
		CacheTTL: cfg.Cache.TTL,
		Coalesce: cfg.Cache.Coalesce,
	})
	if err != nil {
		return nil, fmt.Errorf("create search pipeline: %w", err)
	}

	routerCfg := httpserver.DefaultConfig()
	routerCfg.MaxUploadBytes = cfg.HTTP.MaxUploadBytes

	return httpserver.NewRouter(pipeline, store, routerCfg, logging.NewLogger("http")), nil
}

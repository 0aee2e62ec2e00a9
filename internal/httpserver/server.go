// Package httpserver exposes the search pipeline over HTTP.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/price-sniffer/pkg/metrics"
	"github.com/Sternrassler/price-sniffer/pkg/search"
)

// Searcher answers search requests. *search.Pipeline implements it.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

// Pinger reports backend readiness. cache.Store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router settings.
type Config struct {
	// MaxUploadBytes caps the request body of /api/search
	MaxUploadBytes int64

	// ReadyTimeout bounds the readiness ping
	ReadyTimeout time.Duration
}

// DefaultConfig returns the default router settings.
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes: 10 << 20,
		ReadyTimeout:   2 * time.Second,
	}
}

// NewRouter builds the HTTP handler.
func NewRouter(searcher Searcher, ready Pinger, cfg Config, logger zerolog.Logger) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultConfig().ReadyTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	// any origin, echoed back: a literal "*" is rejected on credentialed requests
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(*http.Request, string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	validate := validator.New()

	r.Post("/api/search", newSearchHandler(searcher, validate, cfg.MaxUploadBytes, logger))
	r.Get("/health", healthHandler)
	r.Get("/ready", newReadyHandler(ready, cfg.ReadyTimeout, logger))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

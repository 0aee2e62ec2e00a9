// Package provider is the HTTP client for the shopping-search provider
// (Serper's Google Shopping endpoint).
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultEndpoint is the shopping-search endpoint.
const DefaultEndpoint = "https://google.serper.dev/shopping"

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 10 << 20

// Prometheus metrics for provider calls.
var (
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniffer_provider_requests_total",
		Help: "Total provider requests by status",
	}, []string{"status"})

	providerRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniffer_provider_request_duration_seconds",
		Help:    "Provider request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	providerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniffer_provider_errors_total",
		Help: "Total provider errors by class",
	}, []string{"class"})

	providerRecordsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniffer_provider_records_returned",
		Help:    "Number of shopping records per provider response",
		Buckets: []float64{0, 1, 5, 10, 20, 40, 100},
	})
)

// Client calls the shopping-search provider.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// APIKey is sent in the X-API-KEY header (REQUIRED)
	APIKey string

	// Endpoint is the shopping-search URL
	Endpoint string

	// Timeout bounds a single provider call
	Timeout time.Duration

	// Retry policy (single attempt by default)
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:   apiKey,
		Endpoint: DefaultEndpoint,
		Timeout:  30 * time.Second,
		Retry:    DefaultRetryConfig(),
	}
}

// New creates a new provider client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	logger := log.With().Str("component", "provider-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Search sends query to the provider and returns its raw shopping records.
// A response without a shopping list yields an empty slice. Any transport,
// status or decoding failure is returned as a *ProviderError.
func (c *Client) Search(ctx context.Context, query string) ([]Record, error) {
	payload, err := json.Marshal(searchRequest{Q: query})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	startTime := time.Now()
	defer func() {
		providerRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().
		Str("query", query).
		Str("endpoint", c.config.Endpoint).
		Msg("Calling shopping provider")

	var records []Record
	err = retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		var callErr error
		records, callErr = c.do(ctx, payload)
		if callErr != nil {
			class := classOf(callErr)
			providerErrorsTotal.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Err(callErr).
				Str("error_class", string(class)).
				Msg("Provider request failed")
		}
		return callErr
	})
	if err != nil {
		return nil, err
	}

	providerRecordsReturned.Observe(float64(len(records)))
	c.logger.Debug().
		Str("query", query).
		Int("records", len(records)).
		Msg("Provider returned records")

	return records, nil
}

// do performs one provider round trip.
func (c *Client) do(ctx context.Context, payload []byte) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		providerRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &ProviderError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	providerRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if class := classifyStatus(resp.StatusCode); class != "" {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "invalid response body",
			Err:        err,
		}
	}

	if body.Shopping == nil {
		return []Record{}, nil
	}
	return body.Shopping, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Package metrics provides the Prometheus registry and exposition handler for
// the price sniffer. All metrics are defined in their respective packages
// (cache, provider, search, httpserver) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the price sniffer.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the /metrics exposition handler for Registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - sniffer_cache_hits_total (Counter): Search cache hits
//   - sniffer_cache_misses_total (Counter): Search cache misses
//   - sniffer_cache_writes_total (Counter): Search results written to cache
//   - sniffer_cache_errors_total{operation} (Counter): Cache operation errors
//
// Provider Metrics (pkg/provider):
//   - sniffer_provider_requests_total{status} (Counter): Provider requests by HTTP status
//   - sniffer_provider_request_duration_seconds (Histogram): Provider call duration
//   - sniffer_provider_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//   - sniffer_provider_records_returned (Histogram): Records per provider response
//   - sniffer_provider_retries_total{error_class} (Counter): Retry attempts
//   - sniffer_provider_retry_exhausted_total{error_class} (Counter): Calls that exhausted retries
//
// Search Metrics (pkg/search):
//   - sniffer_searches_total{outcome} (Counter): Searches by outcome (Cache, Google API, invalid, error)
//   - sniffer_search_duration_seconds{source} (Histogram): End-to-end search duration
//   - sniffer_offers_dropped_total (Counter): Records dropped for an unusable price
//   - sniffer_searches_coalesced_total (Counter): Searches that shared an in-flight provider call
//
// HTTP Metrics (internal/httpserver):
//   - sniffer_http_requests_total{route, status} (Counter): Inbound requests
//   - sniffer_http_request_duration_seconds{route} (Histogram): Inbound request duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(sniffer_cache_hits_total[5m])) /
//   (sum(rate(sniffer_cache_hits_total[5m])) + sum(rate(sniffer_cache_misses_total[5m])))
//
//   # Paid provider calls per minute
//   sum(rate(sniffer_provider_requests_total[1m])) * 60
//
//   # P95 Search Latency on a miss
//   histogram_quantile(0.95, rate(sniffer_search_duration_seconds_bucket{source="Google API"}[5m]))

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniffer_cache_hits_total",
			Help: "Total number of search cache hits",
		},
	)

	// CacheMisses tracks cache misses (including misses of the no-op store)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniffer_cache_misses_total",
			Help: "Total number of search cache misses",
		},
	)

	// CacheWrites tracks successful cache writes
	CacheWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniffer_cache_writes_total",
			Help: "Total number of search results written to cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniffer_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "ping"
	)
)

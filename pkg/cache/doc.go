// Package cache provides the search result cache with a Redis backend.
//
// The cache is a cache-aside store: the search pipeline looks a result up
// before calling the shopping provider and writes the freshly computed result
// back with a fixed TTL. Features:
//
// - Canonical cache keys (case and surrounding whitespace insensitive)
// - JSON wire format holding the offer list and its price statistics
// - Store-enforced expiry (Redis SET ... EX)
// - Null-object store when Redis is not configured or unreachable
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Select a store once at startup
//	store := cache.Connect(ctx, os.Getenv("REDIS_URL"), logger)
//	defer store.Close()
//
//	// Derive the key
//	key := cache.CacheKey{Query: "  iPhone 15 "}.String() // "search:iphone 15"
//
//	// Get from cache
//	data, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - call the provider
//	}
//
//	// Decode the wire format
//	entry, err := cache.DecodeEntry(data)
//
// # Degraded Mode
//
// Connect never fails. An empty URL, a URL go-redis cannot parse, or a failed
// PING at startup selects NopStore: every Get misses and every Set is a no-op.
// Connectivity is not retried afterwards.
//
// # Metrics
//
//   - sniffer_cache_hits_total - Cache hits
//   - sniffer_cache_misses_total - Cache misses
//   - sniffer_cache_writes_total - Successful cache writes
//   - sniffer_cache_errors_total{operation} - Cache operation errors
package cache

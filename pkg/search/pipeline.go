package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/price-sniffer/pkg/cache"
	"github.com/Sternrassler/price-sniffer/pkg/pricing"
)

// Prometheus metrics for the search pipeline.
var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniffer_searches_total",
		Help: "Total searches by outcome (Cache, Google API, invalid, error)",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sniffer_search_duration_seconds",
		Help:    "Search duration in seconds by source",
		Buckets: []float64{0.005, 0.05, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"})

	offersDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniffer_offers_dropped_total",
		Help: "Provider records dropped because their price did not parse to a positive number",
	})

	searchesCoalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniffer_searches_coalesced_total",
		Help: "Searches that shared another in-flight provider call",
	})
)

// Config holds the pipeline configuration.
type Config struct {
	// CacheTTL is the expiry set on every cache write
	CacheTTL time.Duration

	// Coalesce shares one provider call between concurrent identical misses
	Coalesce bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL: cache.DefaultTTL,
		Coalesce: false,
	}
}

// Pipeline runs cache-aside price searches. It is safe for concurrent use.
type Pipeline struct {
	provider   Provider
	cache      cache.Store
	recognizer Recognizer
	config     Config
	group      singleflight.Group
	logger     zerolog.Logger
}

// New creates a pipeline. A nil store disables caching; a nil recognizer
// uses the stub recognizer.
func New(p Provider, store cache.Store, recognizer Recognizer, cfg Config) (*Pipeline, error) {
	if p == nil {
		return nil, fmt.Errorf("provider is required")
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache_ttl must be > 0 (got %s)", cfg.CacheTTL)
	}

	if store == nil {
		store = cache.NopStore{}
	}

	if recognizer == nil {
		recognizer = NewStubRecognizer()
	}

	return &Pipeline{
		provider:   p,
		cache:      store,
		recognizer: recognizer,
		config:     cfg,
		logger:     log.With().Str("component", "search-pipeline").Logger(),
	}, nil
}

// Search answers one price search.
//
// It returns ErrMissingInput when the request has neither query nor image;
// a query of only whitespace counts as missing and reaches neither the cache
// nor the provider. A failed live call returns a wrapped provider error. Cache
// problems never fail a search.
func (p *Pipeline) Search(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	query, err := p.resolveQuery(ctx, req)
	if err != nil {
		searchesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	p.logger.Info().Str("query", query).Msg("Searching")

	key := cache.CacheKey{Query: query}.String()

	// Step 1: Check Cache
	if entry, ok := p.lookup(ctx, key); ok {
		searchesTotal.WithLabelValues(SourceCache).Inc()
		searchDuration.WithLabelValues(SourceCache).Observe(time.Since(startTime).Seconds())
		return newResult(query, entry, SourceCache), nil
	}

	// Step 2: Call Provider
	var entry *cache.Entry
	source := SourceProvider
	if p.config.Coalesce {
		entry, source, err = p.fetchShared(ctx, key, query)
	} else {
		entry, err = p.fetch(ctx, key, query)
	}
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	searchesTotal.WithLabelValues(source).Inc()
	searchDuration.WithLabelValues(source).Observe(time.Since(startTime).Seconds())

	return newResult(query, entry, source), nil
}

// resolveQuery picks the query text for req.
func (p *Pipeline) resolveQuery(ctx context.Context, req Request) (string, error) {
	query := req.Query

	if req.Image != nil {
		recognized, err := p.recognizer.Recognize(ctx, *req.Image)
		if err != nil {
			return "", fmt.Errorf("recognize image: %w", err)
		}
		p.logger.Debug().
			Str("filename", req.Image.Filename).
			Str("query", recognized).
			Msg("Image recognized")
		query = recognized
	}

	if strings.TrimSpace(query) == "" {
		return "", ErrMissingInput
	}

	return query, nil
}

// lookup returns the cached entry for key. Any cache failure is a miss.
func (p *Pipeline) lookup(ctx context.Context, key string) (*cache.Entry, bool) {
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			p.logger.Warn().Err(err).Str("key", key).Msg("Cache get error")
		} else {
			p.logger.Debug().Str("key", key).Msg("Cache miss")
		}
		return nil, false
	}

	entry, err := cache.DecodeEntry(data)
	if err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("Ignoring corrupt cache entry")
		return nil, false
	}

	p.logger.Debug().Str("key", key).Int("items", len(entry.Items)).Msg("Cache hit")
	return entry, true
}

// sharedFetch is the value of one coalesced call.
type sharedFetch struct {
	entry  *cache.Entry
	source string
}

// fetchShared runs fetch once per key for concurrent callers.
// The shared call re-checks the cache first, so a caller arriving after an
// earlier shared call finished reads that call's entry instead of fetching
// again. The shared call is detached from the first caller's cancellation.
func (p *Pipeline) fetchShared(ctx context.Context, key, query string) (*cache.Entry, string, error) {
	v, err, shared := p.group.Do(key, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		if entry, ok := p.lookup(detached, key); ok {
			return sharedFetch{entry: entry, source: SourceCache}, nil
		}
		entry, err := p.fetch(detached, key, query)
		if err != nil {
			return nil, err
		}
		return sharedFetch{entry: entry, source: SourceProvider}, nil
	})
	if shared {
		searchesCoalescedTotal.Inc()
	}
	if err != nil {
		return nil, "", err
	}

	res := v.(sharedFetch)
	return &cache.Entry{Items: slices.Clone(res.entry.Items), Stats: res.entry.Stats}, res.source, nil
}

// fetch calls the provider and builds, caches and returns the entry.
func (p *Pipeline) fetch(ctx context.Context, key, query string) (*cache.Entry, error) {
	records, err := p.provider.Search(ctx, query)
	if err != nil {
		p.logger.Error().Err(err).Str("query", query).Msg("Provider call failed")
		return nil, fmt.Errorf("search provider: %w", err)
	}

	offers, dropped := normalizeRecords(records)
	if dropped > 0 {
		offersDroppedTotal.Add(float64(dropped))
		p.logger.Debug().
			Int("dropped", dropped).
			Int("kept", len(offers)).
			Msg("Dropped records without a usable price")
	}

	entry := &cache.Entry{
		Items: offers,
		Stats: pricing.ComputeStats(offers),
	}

	// Empty results are not cached
	if len(offers) > 0 {
		p.store(ctx, key, entry)
	}

	return entry, nil
}

// store writes entry to the cache; failures are only logged.
func (p *Pipeline) store(ctx context.Context, key string, entry *cache.Entry) {
	data, err := entry.Encode()
	if err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	if err := p.cache.Set(ctx, key, data, p.config.CacheTTL); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache result")
		return
	}

	p.logger.Debug().
		Str("key", key).
		Dur("ttl", p.config.CacheTTL).
		Msg("Cached result")
}

func newResult(query string, entry *cache.Entry, source string) *Result {
	items := entry.Items
	if items == nil {
		items = []pricing.Offer{}
	}
	return &Result{
		Query:  query,
		Stats:  entry.Stats,
		Items:  items,
		Source: source,
	}
}

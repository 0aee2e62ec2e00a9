package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a key/value store with expiring entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored value or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key; the store drops it once ttl elapses.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// NopStore is the store used when no cache backend is available.
// Every Get misses and every Set is discarded.
type NopStore struct{}

var _ Store = NopStore{}

// Get always returns ErrCacheMiss.
func (NopStore) Get(context.Context, string) ([]byte, error) {
	CacheMisses.Inc()
	return nil, ErrCacheMiss
}

// Set does nothing.
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Ping always succeeds: running without a cache is a valid mode.
func (NopStore) Ping(context.Context) error { return nil }

// Close does nothing.
func (NopStore) Close() error { return nil }

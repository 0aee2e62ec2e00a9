package cache

import (
	"strings"
)

// KeyNamespace prefixes every search result key so other key families can
// share the same Redis database.
const KeyNamespace = "search"

// CacheKey identifies a cached search result.
type CacheKey struct {
	// Query is the user query as received (case and padding are irrelevant)
	Query string
}

// String generates the canonical cache key string.
// Format: search:<lower-cased, trimmed query>
//
// Example:
//
//	CacheKey{Query: "  iPhone 15 "}.String() == "search:iphone 15"
func (k CacheKey) String() string {
	return KeyNamespace + ":" + strings.TrimSpace(strings.ToLower(k.Query))
}

package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/price-sniffer/pkg/pricing"
)

// DefaultTTL is how long a search result stays in the cache.
const DefaultTTL = 3600 * time.Second

// Entry is the cache wire format for one search result.
type Entry struct {
	// Items are the offers sorted ascending by price
	Items []pricing.Offer `json:"items"`

	// Stats are the aggregate prices over Items
	Stats pricing.PriceStats `json:"stats"`
}

// Encode serializes the entry to the JSON wire format.
func (e *Entry) Encode() ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("cache entry cannot be nil")
	}

	items := e.Items
	if items == nil {
		items = []pricing.Offer{}
	}

	data, err := json.Marshal(Entry{Items: items, Stats: e.Stats})
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

// DecodeEntry parses a JSON wire format value.
// Returns ErrInvalidEntry if the value is corrupted or lacks the items list.
func DecodeEntry(data []byte) (*Entry, error) {
	var raw struct {
		Items *[]pricing.Offer    `json:"items"`
		Stats *pricing.PriceStats `json:"stats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if raw.Items == nil || raw.Stats == nil {
		return nil, fmt.Errorf("%w: missing items or stats", ErrInvalidEntry)
	}

	return &Entry{Items: *raw.Items, Stats: *raw.Stats}, nil
}

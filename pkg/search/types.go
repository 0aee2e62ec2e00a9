package search

import (
	"context"
	"errors"

	"github.com/Sternrassler/price-sniffer/pkg/pricing"
	"github.com/Sternrassler/price-sniffer/pkg/provider"
)

// Result sources.
const (
	// SourceCache marks a result served from the cache
	SourceCache = "Cache"

	// SourceProvider marks a result computed from a live provider call
	SourceProvider = "Google API"
)

// ErrMissingInput is returned when a request carries neither a query nor an image.
var ErrMissingInput = errors.New("missing query")

// Image describes an uploaded product photo.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
}

// Request is one search request. Image takes precedence over Query.
type Request struct {
	Query string
	Image *Image
}

// Result is the search response envelope.
type Result struct {
	Query  string             `json:"query"`
	Stats  pricing.PriceStats `json:"stats"`
	Items  []pricing.Offer    `json:"items"`
	Source string             `json:"source"`
}

// Provider fetches raw shopping records for a query.
// *provider.Client implements it.
type Provider interface {
	Search(ctx context.Context, query string) ([]provider.Record, error)
}

// Recognizer turns an uploaded image into a text query.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (string, error)
}

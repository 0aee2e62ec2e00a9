// Package search implements the cache-aside price search pipeline.
//
// A search resolves the query (text, or an uploaded image run through a
// Recognizer), looks the canonical key up in the result cache and, on a miss,
// calls the shopping provider, normalizes and sorts the offers, computes price
// statistics and writes non-empty results back with a fixed TTL.
//
//	pipeline, _ := search.New(providerClient, store, nil, search.DefaultConfig())
//	result, err := pipeline.Search(ctx, search.Request{Query: "iphone 15"})
//	if errors.Is(err, search.ErrMissingInput) {
//		// 400
//	}
//
// Concurrent identical misses each call the provider unless Config.Coalesce
// is set, in which case they share one provider call.
package search

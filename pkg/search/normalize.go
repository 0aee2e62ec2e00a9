package search

import (
	"sort"

	"github.com/Sternrassler/price-sniffer/pkg/pricing"
	"github.com/Sternrassler/price-sniffer/pkg/provider"
)

// Defaults for fields a provider record may omit.
const (
	unknownTitle    = "Unknown"
	unknownMerchant = "Unknown"
	missingLink     = "#"
)

// offerFromRecord maps a provider record to an Offer.
// It reports false when the price does not normalize to a positive number.
func offerFromRecord(r provider.Record) (pricing.Offer, bool) {
	formatted := string(r.Price)

	price := pricing.Normalize(formatted)
	if price <= 0 {
		return pricing.Offer{}, false
	}

	return pricing.Offer{
		Title:          valueOr(r.Title, unknownTitle),
		Price:          price,
		FormattedPrice: formatted,
		Merchant:       valueOr(r.Source, unknownMerchant),
		Link:           valueOr(r.Link, missingLink),
		ImageURL:       valueOr(r.ImageURL, valueOr(r.Thumbnail, "")),
	}, true
}

// normalizeRecords maps records to offers sorted ascending by price.
// Equal prices keep provider order. The second return value counts dropped records.
func normalizeRecords(records []provider.Record) ([]pricing.Offer, int) {
	offers := make([]pricing.Offer, 0, len(records))
	for _, r := range records {
		if offer, ok := offerFromRecord(r); ok {
			offers = append(offers, offer)
		}
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})

	return offers, len(records) - len(offers)
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

// Package pricing turns loosely formatted shop prices into comparable numbers
// and aggregates them into price statistics.
package pricing

// Currency is the label attached to every PriceStats value.
// Provider currencies are not inspected or converted.
const Currency = "USD"

// Offer is one normalized product listing.
type Offer struct {
	// Title is the listing title ("Unknown" when the provider omits it)
	Title string `json:"title"`

	// Price is the normalized numeric price, always > 0
	Price float64 `json:"price"`

	// FormattedPrice is the provider's display string, kept verbatim
	FormattedPrice string `json:"formatted_price"`

	// Merchant is the shop selling the item ("Unknown" when absent)
	Merchant string `json:"merchant"`

	// Link points to the listing ("#" when absent)
	Link string `json:"link"`

	// ImageURL may be empty
	ImageURL string `json:"image_url"`
}

// PriceStats aggregates prices over a set of offers.
type PriceStats struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	AvgPrice float64 `json:"avg_price"`
	Currency string  `json:"currency"`
}

package pricing

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ComputeStats returns min, max and average price over offers with a positive
// price. The average is rounded to 2 decimal places. With no positive prices
// all numeric fields are 0.
func ComputeStats(offers []Offer) PriceStats {
	stats := PriceStats{Currency: Currency}

	var (
		sum   float64
		count int
	)
	for _, o := range offers {
		if o.Price <= 0 {
			continue
		}
		if count == 0 || o.Price < stats.MinPrice {
			stats.MinPrice = o.Price
		}
		if count == 0 || o.Price > stats.MaxPrice {
			stats.MaxPrice = o.Price
		}
		sum += o.Price
		count++
	}

	if count == 0 {
		return stats
	}

	stats.AvgPrice = roundPrice(sum / float64(count))
	return stats
}

// roundPrice rounds the exact binary value of v to cents. Exact ties go to
// the even cent, so 1.005 (stored just below the tie) is 1.00 and 0.125 is 0.12.
func roundPrice(v float64) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 2, 64))
	if err != nil {
		// +Inf from an overflowing sum
		return v
	}
	rounded, _ := d.Float64()
	return rounded
}

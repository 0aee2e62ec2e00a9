package pricing

import (
	"math"
	"strconv"
	"strings"
)

// Normalize converts a raw price token such as "$1,299.00" into a number.
//
// Every character that is not a decimal digit or '.' is removed and the rest
// is parsed as a float. Anything that does not parse ("N/A", "", "12.5.3")
// yields 0. The result is always finite and >= 0.
func Normalize(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)

	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}

	return value
}

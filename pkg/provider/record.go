package provider

import (
	"encoding/json"
)

// Record is one shopping result as returned by the provider.
// Fields are pointers so callers can tell an absent field from an empty one.
type Record struct {
	Title     *string  `json:"title"`
	Price     RawPrice `json:"price"`
	Source    *string  `json:"source"`
	Link      *string  `json:"link"`
	ImageURL  *string  `json:"imageUrl"`
	Thumbnail *string  `json:"thumbnail"`
}

// RawPrice is the provider's display price. Non-string JSON values
// (numbers, null) decode to an empty price.
type RawPrice string

// UnmarshalJSON implements json.Unmarshaler.
func (p *RawPrice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = ""
		return nil
	}
	*p = RawPrice(s)
	return nil
}

// searchRequest is the provider request body.
type searchRequest struct {
	Q string `json:"q"`
}

// searchResponse is the part of the provider response we consume.
type searchResponse struct {
	Shopping []Record `json:"shopping"`
}

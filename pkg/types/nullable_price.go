package types

import (
	"bytes"
)

// NullablePrice tracks whether a price field was explicitly present in JSON.
// Present with null clears the stored value; absent leaves it untouched.
type NullablePrice struct {
	Valid bool
	Value Price
}

// SetPrice builds a present NullablePrice.
func SetPrice(p Price) NullablePrice {
	return NullablePrice{Valid: true, Value: p}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullablePrice) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	var p Price
	if err := p.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = p
	return nil
}

// MarshalJSON renders the wrapped price, or null when cleared.
func (n NullablePrice) MarshalJSON() ([]byte, error) {
	return n.Value.MarshalJSON()
}

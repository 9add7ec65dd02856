package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a nullable DECIMAL(10,2) amount rendered as a JSON number.
type Price struct {
	decimal.NullDecimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{NullDecimal: decimal.NewNullDecimal(d)}
}

// PriceFromFloat is a convenience for tests and the CLI.
func PriceFromFloat(f float64) Price {
	return NewPrice(decimal.NewFromFloat(f))
}

func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return NewPrice(d), nil
}

func (p Price) IsNull() bool {
	return !p.Valid
}

func (p Price) String() string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.StringFixed(2)
}

func (p *Price) Scan(src any) error {
	return p.NullDecimal.Scan(src)
}

func (p Price) Value() (driver.Value, error) {
	if !p.Valid {
		return nil, nil
	}
	return p.Decimal.Round(2).String(), nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Decimal.StringFixed(2)), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = Price{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if s == "" {
			*p = Price{}
			return nil
		}
		parsed, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", trimmed, err)
	}
	*p = NewPrice(d)
	return nil
}

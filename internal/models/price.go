package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Price is a non-float money amount. It encodes as a JSON number with two
// fraction digits and decodes from a JSON number or a numeric string.
type Price struct {
	decimal.Decimal
}

func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{Decimal: d}, nil
}

func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IntegerDigits counts digits left of the decimal point, ignoring sign.
func (p Price) IntegerDigits() int {
	s := p.Abs().Truncate(0).String()
	return len(s)
}

// FractionDigits counts digits right of the decimal point as written.
func (p Price) FractionDigits() int {
	if e := p.Exponent(); e < 0 {
		return int(-e)
	}
	return 0
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.StringFixed(2)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return p.Decimal.UnmarshalJSON(data)
}

func (p Price) Value() (driver.Value, error) {
	return p.StringFixed(2), nil
}

func (p *Price) Scan(src any) error {
	return p.Decimal.Scan(src)
}

package asset

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a JSON number that also accepts numeric strings.
// Anything that does not parse to a finite value decodes to zero instead of failing the payload.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(ParseOrZero(strings.Trim(string(b), `"`)))
	return nil
}

// Float64 returns the value as float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// ParseOrZero parses s as a decimal number, returning 0 for empty, null, malformed or non-finite input.
func ParseOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return 0
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}

	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

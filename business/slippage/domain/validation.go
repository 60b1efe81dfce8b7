package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RawInput is an estimation request as received on the wire.
// amount_in may be a JSON number or a numeric string.
type RawInput struct {
	TokenIn   string          `json:"token_in"`
	TokenOut  string          `json:"token_out"`
	AmountIn  json.RawMessage `json:"amount_in"`
	RouteHint string          `json:"route_hint,omitempty"`
}

// Validation is the result of ValidateInput: either a usable input or a rejection reason.
type Validation struct {
	input  SafeSlippageInput
	reason string
	valid  bool
}

// Valid reports whether the input passed validation.
func (v Validation) Valid() bool { return v.valid }

// Input returns the validated input. It is the zero value when Valid is false.
func (v Validation) Input() SafeSlippageInput { return v.input }

// Reason returns why the input was rejected.
func (v Validation) Reason() string { return v.reason }

func accepted(in SafeSlippageInput) Validation {
	return Validation{input: in, valid: true}
}

func rejected(reason string) Validation {
	return Validation{reason: reason}
}

// ValidateInput checks the request shape. Token address format is checked later by the estimator.
func ValidateInput(raw RawInput) Validation {
	if strings.TrimSpace(raw.TokenIn) == "" {
		return rejected("token_in is required")
	}
	if strings.TrimSpace(raw.TokenOut) == "" {
		return rejected("token_out is required")
	}

	amount, ok := coerceAmount(raw.AmountIn)
	if !ok {
		return rejected("amount_in must be a number")
	}
	if !amount.IsPositive() {
		return rejected("amount_in must be positive")
	}
	value := amount.InexactFloat64()
	if math.IsInf(value, 0) {
		return rejected("amount_in must be finite")
	}

	return accepted(SafeSlippageInput{
		TokenIn:   raw.TokenIn,
		TokenOut:  raw.TokenOut,
		AmountIn:  value,
		RouteHint: RouteHint(raw.RouteHint),
	})
}

func coerceAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, false
	}
	s := strings.TrimSpace(strings.Trim(string(trimmed), `"`))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Package asset holds the token, chain and number primitives shared by pool providers.
package asset

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress reports whether s is "0x" followed by exactly 40 hex digits.
// Hex digits are case-insensitive; the prefix is not.
func IsValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// NormalizeHex lower-cases and trims an address for comparison.
func NormalizeHex(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameAddress compares two addresses case-insensitively. Empty never matches.
func SameAddress(a, b string) bool {
	na := NormalizeHex(a)
	return na != "" && na == NormalizeHex(b)
}

// MatchesPair reports whether {base, quote} equals {tokenIn, tokenOut} in either order.
func MatchesPair(base, quote, tokenIn, tokenOut string) bool {
	return (SameAddress(base, tokenIn) && SameAddress(quote, tokenOut)) ||
		(SameAddress(base, tokenOut) && SameAddress(quote, tokenIn))
}

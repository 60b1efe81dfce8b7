// Package domain contains the core types and estimation rules for the slippage context.
package domain

import "strings"

// TokenRef identifies one side of a pool.
type TokenRef struct {
	Address string
	Symbol  string
}

// Liquidity holds pool depth.
type Liquidity struct {
	USD float64 // total value locked; <= 0 excludes the pool from analysis
}

// PriceChange holds signed price moves in percent (1.5 means +1.5%).
type PriceChange struct {
	H24 float64
}

// NormalizedPool is a provider-agnostic view of one liquidity pool.
// It lives for a single request and is never stored.
type NormalizedPool struct {
	PairAddress string
	BaseToken   *TokenRef
	QuoteToken  *TokenRef
	PriceUSD    float64 // 0 means unknown
	Liquidity   Liquidity
	PriceChange PriceChange
	ChainID     string
	DexID       string
}

// RouteHint is an optional caller hint: a chain name ("base") or a pair locator ("base/0xpair").
type RouteHint string

// IsPairLocator reports whether the hint names an explicit pair rather than a chain.
func (h RouteHint) IsPairLocator() bool {
	return strings.Contains(string(h), "/")
}

// Chain returns the chain name carried by the hint, or "" for empty hints and pair locators.
func (h RouteHint) Chain() string {
	if h.IsPairLocator() {
		return ""
	}
	return strings.TrimSpace(string(h))
}

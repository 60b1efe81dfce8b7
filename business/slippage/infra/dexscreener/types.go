package dexscreener

import (
	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/asset"
)

// pairsResponse is the body of both /latest/dex/tokens and /latest/dex/pairs.
type pairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []pair `json:"pairs"`
	Pair          *pair  `json:"pair"` // older single-pair shape
}

func (r *pairsResponse) all() []pair {
	if r == nil {
		return nil
	}
	if len(r.Pairs) == 0 && r.Pair != nil {
		return []pair{*r.Pair}
	}
	return r.Pairs
}

type token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type liquidity struct {
	USD   asset.Number `json:"usd"`
	Base  asset.Number `json:"base"`
	Quote asset.Number `json:"quote"`
}

type priceChange struct {
	M5  asset.Number `json:"m5"`
	H1  asset.Number `json:"h1"`
	H6  asset.Number `json:"h6"`
	H24 asset.Number `json:"h24"`
}

type pair struct {
	ChainID     string       `json:"chainId"`
	DexID       string       `json:"dexId"`
	URL         string       `json:"url"`
	PairAddress string       `json:"pairAddress"`
	BaseToken   *token       `json:"baseToken"`
	QuoteToken  *token       `json:"quoteToken"`
	PriceNative asset.Number `json:"priceNative"`
	PriceUSD    asset.Number `json:"priceUsd"`
	Liquidity   *liquidity   `json:"liquidity"`
	PriceChange *priceChange `json:"priceChange"`
}

func (p pair) baseAddress() string {
	if p.BaseToken == nil {
		return ""
	}
	return p.BaseToken.Address
}

func (p pair) quoteAddress() string {
	if p.QuoteToken == nil {
		return ""
	}
	return p.QuoteToken.Address
}

func (p pair) toDomain() domain.NormalizedPool {
	pool := domain.NormalizedPool{
		PairAddress: p.PairAddress,
		BaseToken:   tokenRef(p.BaseToken),
		QuoteToken:  tokenRef(p.QuoteToken),
		PriceUSD:    p.PriceUSD.Float64(),
		ChainID:     p.ChainID,
		DexID:       p.DexID,
	}
	if p.Liquidity != nil {
		pool.Liquidity.USD = p.Liquidity.USD.Float64()
	}
	if p.PriceChange != nil {
		pool.PriceChange.H24 = p.PriceChange.H24.Float64()
	}
	return pool
}

func tokenRef(t *token) *domain.TokenRef {
	if t == nil {
		return nil
	}
	return &domain.TokenRef{Address: t.Address, Symbol: t.Symbol}
}

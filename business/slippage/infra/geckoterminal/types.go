package geckoterminal

import (
	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/asset"
)

// poolsResponse is the JSON:API body of /api/v2/networks/{network}/pools.
type poolsResponse struct {
	Data []poolResource `json:"data"`
}

type poolResource struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Attributes    *attributes    `json:"attributes"`
	Relationships *relationships `json:"relationships"`
}

type token struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

type changeWindows struct {
	H1  asset.Number `json:"h1"`
	H24 asset.Number `json:"h24"`
}

type attributes struct {
	Address                  string         `json:"address"`
	Name                     string         `json:"name"`
	BaseToken                *token         `json:"base_token"`
	QuoteToken               *token         `json:"quote_token"`
	BaseTokenPriceUSD        asset.Number   `json:"base_token_price_usd"`
	ReserveInUSD             asset.Number   `json:"reserve_in_usd"`
	PriceChangePercentage24h *asset.Number  `json:"price_change_percentage_24h"`
	PriceChangePercentage    *changeWindows `json:"price_change_percentage"`
}

type relationships struct {
	Dex *struct {
		Data *struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"dex"`
}

func (r poolResource) baseAddress() string {
	if r.Attributes == nil || r.Attributes.BaseToken == nil {
		return ""
	}
	return r.Attributes.BaseToken.Address
}

func (r poolResource) quoteAddress() string {
	if r.Attributes == nil || r.Attributes.QuoteToken == nil {
		return ""
	}
	return r.Attributes.QuoteToken.Address
}

// priceChange24h prefers the flat field and falls back to the windowed object.
func (a *attributes) priceChange24h() float64 {
	if a.PriceChangePercentage24h != nil {
		return a.PriceChangePercentage24h.Float64()
	}
	if a.PriceChangePercentage != nil {
		return a.PriceChangePercentage.H24.Float64()
	}
	return 0
}

func (r poolResource) toDomain(network string) domain.NormalizedPool {
	pool := domain.NormalizedPool{ChainID: network}
	if r.Relationships != nil && r.Relationships.Dex != nil && r.Relationships.Dex.Data != nil {
		pool.DexID = r.Relationships.Dex.Data.ID
	}

	a := r.Attributes
	if a == nil {
		return pool
	}
	pool.PairAddress = a.Address
	pool.BaseToken = tokenRef(a.BaseToken)
	pool.QuoteToken = tokenRef(a.QuoteToken)
	pool.PriceUSD = a.BaseTokenPriceUSD.Float64()
	pool.Liquidity.USD = a.ReserveInUSD.Float64()
	pool.PriceChange.H24 = a.priceChange24h()
	return pool
}

func tokenRef(t *token) *domain.TokenRef {
	if t == nil {
		return nil
	}
	return &domain.TokenRef{Address: t.Address, Symbol: t.Symbol}
}

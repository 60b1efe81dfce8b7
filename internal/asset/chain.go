package asset

import "strings"

// ChainAliases maps user-facing chain names onto a provider's chain identifiers.
type ChainAliases map[string]string

// Resolve returns the provider identifier for name. Unknown names pass through lower-cased.
func (a ChainAliases) Resolve(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := a[key]; ok {
		return id
	}
	return key
}

// GeckoTerminalNetworks maps chain names onto GeckoTerminal network ids.
var GeckoTerminalNetworks = ChainAliases{
	"eth":                 "eth",
	"ethereum":            "eth",
	"bsc":                 "bsc",
	"binance-smart-chain": "bsc",
	"polygon":             "polygon",
	"matic":               "polygon",
	"arbitrum":            "arbitrum",
	"optimism":            "optimism",
	"base":                "base",
	"avalanche":           "avax",
	"avax":                "avax",
	"fantom":              "ftm",
	"ftm":                 "ftm",
}

// DexScreenerChains maps chain names onto DexScreener chainId values.
var DexScreenerChains = ChainAliases{
	"eth":                 "ethereum",
	"ethereum":            "ethereum",
	"bsc":                 "bsc",
	"binance-smart-chain": "bsc",
	"polygon":             "polygon",
	"matic":               "polygon",
	"arbitrum":            "arbitrum",
	"optimism":            "optimism",
	"base":                "base",
	"avalanche":           "avalanche",
	"avax":                "avalanche",
	"fantom":              "fantom",
	"ftm":                 "fantom",
}

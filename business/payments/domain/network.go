package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// USDCDecimals is the precision of USDC on every supported network.
const USDCDecimals = 6

// Network describes a chain payments can settle on.
type Network struct {
	Name    string
	ChainID int64
	USDC    string // token contract
	// EIP-712 domain of the USDC contract
	TokenName    string
	TokenVersion string
}

var networks = map[string]Network{
	"base": {
		Name: "base", ChainID: 8453,
		USDC:      "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		TokenName: "USD Coin", TokenVersion: "2",
	},
	"base-sepolia": {
		Name: "base-sepolia", ChainID: 84532,
		USDC:      "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		TokenName: "USDC", TokenVersion: "2",
	},
	"avalanche": {
		Name: "avalanche", ChainID: 43114,
		USDC:      "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
		TokenName: "USD Coin", TokenVersion: "2",
	},
	"avalanche-fuji": {
		Name: "avalanche-fuji", ChainID: 43113,
		USDC:      "0x5425890298aed601595a70AB815c96711a31Bc65",
		TokenName: "USD Coin", TokenVersion: "2",
	},
	"polygon": {
		Name: "polygon", ChainID: 137,
		USDC:      "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
		TokenName: "USD Coin", TokenVersion: "2",
	},
}

// LookupNetwork returns the settlement network by name.
func LookupNetwork(name string) (Network, error) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Network{}, fmt.Errorf("unsupported payment network %q", name)
	}
	return n, nil
}

// USDCAmount converts a USD price into USDC base units, truncating sub-unit dust.
func USDCAmount(priceUSD decimal.Decimal) string {
	return priceUSD.Shift(USDCDecimals).Truncate(0).String()
}

// PriceSpec is what a resource costs and where the money goes.
type PriceSpec struct {
	Network           Network
	PayTo             string
	PriceUSD          decimal.Decimal
	MaxTimeoutSeconds int
}

// NewRequirements builds exact-scheme requirements for one resource.
func NewRequirements(spec PriceSpec, resource, description string) Requirements {
	return Requirements{
		Scheme:            SchemeExact,
		Network:           spec.Network.Name,
		MaxAmountRequired: USDCAmount(spec.PriceUSD),
		Resource:          resource,
		Description:       description,
		MimeType:          "application/json",
		PayTo:             spec.PayTo,
		MaxTimeoutSeconds: spec.MaxTimeoutSeconds,
		Asset:             spec.Network.USDC,
		Extra: map[string]string{
			"name":    spec.Network.TokenName,
			"version": spec.Network.TokenVersion,
		},
	}
}

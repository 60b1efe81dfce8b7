// Package di contains dependency injection tokens for the slippage context.
package di

import (
	"github.com/fd1az/slippage-sentinel/business/slippage/app"
	"github.com/fd1az/slippage-sentinel/business/slippage/infra/dexscreener"
	"github.com/fd1az/slippage-sentinel/business/slippage/infra/geckoterminal"
	"github.com/fd1az/slippage-sentinel/business/slippage/infra/httpapi"
	"github.com/fd1az/slippage-sentinel/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Estimator = di.NewToken[*app.Estimator]("slippage.Estimator")
)

// Private dependency tokens - internal to slippage module
var (
	DexScreener   = di.NewToken[*dexscreener.Provider]("slippage:dexscreener")
	GeckoTerminal = di.NewToken[*geckoterminal.Provider]("slippage:geckoterminal")
	Aggregator    = di.NewToken[*app.PoolAggregator]("slippage:aggregator")
	Handler       = di.NewToken[*httpapi.Handler]("slippage:httpHandler")
)

// Helper functions for type-safe access
func GetEstimator(c di.ServiceRegistry) *app.Estimator {
	return di.GetToken(c, Estimator)
}

func GetDexScreener(c di.ServiceRegistry) *dexscreener.Provider {
	return di.GetToken(c, DexScreener)
}

func GetGeckoTerminal(c di.ServiceRegistry) *geckoterminal.Provider {
	return di.GetToken(c, GeckoTerminal)
}

func GetAggregator(c di.ServiceRegistry) *app.PoolAggregator {
	return di.GetToken(c, Aggregator)
}

func GetHandler(c di.ServiceRegistry) *httpapi.Handler {
	return di.GetToken(c, Handler)
}

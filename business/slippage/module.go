// Package slippage implements the slippage estimation bounded context.
package slippage

import (
	"context"

	paymentsDI "github.com/fd1az/slippage-sentinel/business/payments/di"
	"github.com/fd1az/slippage-sentinel/business/slippage/app"
	slippageDI "github.com/fd1az/slippage-sentinel/business/slippage/di"
	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/business/slippage/infra/dexscreener"
	"github.com/fd1az/slippage-sentinel/business/slippage/infra/geckoterminal"
	"github.com/fd1az/slippage-sentinel/business/slippage/infra/httpapi"
	"github.com/fd1az/slippage-sentinel/internal/config"
	"github.com/fd1az/slippage-sentinel/internal/di"
	"github.com/fd1az/slippage-sentinel/internal/health"
	"github.com/fd1az/slippage-sentinel/internal/logger"
	"github.com/fd1az/slippage-sentinel/internal/monolith"
)

// Module implements the slippage bounded context.
type Module struct{}

// RegisterServices registers all slippage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register DexScreener (primary provider) - private dependency
	di.RegisterToken(c, slippageDI.DexScreener, func(sr di.ServiceRegistry) *dexscreener.Provider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		provider, err := dexscreener.NewProvider(dexscreener.Config{
			BaseURL:           cfg.DexScreener.BaseURL,
			Timeout:           cfg.DexScreener.Timeout,
			RequestsPerMinute: cfg.DexScreener.RequestsPerMinute,
			UserAgent:         cfg.DexScreener.UserAgent,
		}, log)
		if err != nil {
			panic("failed to create dexscreener provider: " + err.Error())
		}
		return provider
	})

	// Register GeckoTerminal (secondary provider) - private dependency
	di.RegisterToken(c, slippageDI.GeckoTerminal, func(sr di.ServiceRegistry) *geckoterminal.Provider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		provider, err := geckoterminal.NewProvider(geckoterminal.Config{
			BaseURL:           cfg.GeckoTerminal.BaseURL,
			Timeout:           cfg.GeckoTerminal.Timeout,
			RequestsPerMinute: cfg.GeckoTerminal.RequestsPerMinute,
			UserAgent:         cfg.GeckoTerminal.UserAgent,
		}, log)
		if err != nil {
			panic("failed to create geckoterminal provider: " + err.Error())
		}
		return provider
	})

	// Register Aggregator - primary first
	di.RegisterToken(c, slippageDI.Aggregator, func(sr di.ServiceRegistry) *app.PoolAggregator {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPoolAggregator(log,
			slippageDI.GetDexScreener(sr),
			slippageDI.GetGeckoTerminal(sr),
		)
	})

	// Register Estimator (public)
	di.RegisterToken(c, slippageDI.Estimator, func(sr di.ServiceRegistry) *app.Estimator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		bounds := domain.Bounds{
			MinSlippageBps: cfg.Slippage.MinBps,
			MaxSlippageBps: cfg.Slippage.MaxBps,
			FeeOverheadPct: cfg.Slippage.FeeOverheadPct,
		}

		estimator, err := app.NewEstimator(slippageDI.GetAggregator(sr), bounds, log)
		if err != nil {
			panic("failed to create estimator: " + err.Error())
		}
		return estimator
	})

	// Register HTTP handler
	di.RegisterToken(c, slippageDI.Handler, func(sr di.ServiceRegistry) *httpapi.Handler {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		manifest := httpapi.NewManifest(cfg.App, cfg.Payments)
		return httpapi.NewHandler(slippageDI.GetEstimator(sr), manifest, log)
	})

	return nil
}

// Startup mounts the HTTP routes and the provider health checks.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	services := mono.Services()

	paywall := paymentsDI.GetPaywall(services)
	handler := slippageDI.GetHandler(services)
	handler.Register(mono.Router(), paywall.Protect("Estimate safe slippage tolerance for a given swap route"))

	if hs := mono.Health(); hs != nil {
		dex := slippageDI.GetDexScreener(services)
		gecko := slippageDI.GetGeckoTerminal(services)

		hs.RegisterSoftCheck(dex.Name(), breakerCheck(dex.Healthy))
		hs.RegisterSoftCheck(gecko.Name(), breakerCheck(gecko.Healthy))
	}

	providers := slippageDI.GetAggregator(services).Providers()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}

	log.Info(ctx, "slippage module started",
		"providers", names,
		"invoke_path", httpapi.InvokePath)
	return nil
}

func breakerCheck(healthy func() bool) health.CheckFunc {
	return func(context.Context) (bool, string) {
		if healthy() {
			return true, "circuit closed"
		}
		return false, "circuit open"
	}
}

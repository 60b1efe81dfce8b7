// Package payments implements the x402 payments bounded context.
package payments

import (
	"context"

	"github.com/fd1az/slippage-sentinel/business/payments/app"
	paymentsDI "github.com/fd1az/slippage-sentinel/business/payments/di"
	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/business/payments/infra/facilitator"
	"github.com/fd1az/slippage-sentinel/business/payments/infra/x402"
	"github.com/fd1az/slippage-sentinel/internal/config"
	"github.com/fd1az/slippage-sentinel/internal/di"
	"github.com/fd1az/slippage-sentinel/internal/logger"
	"github.com/fd1az/slippage-sentinel/internal/monolith"
)

// Module implements the payments bounded context.
type Module struct{}

// RegisterServices registers all payments services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Facilitator - private dependency, resolved only when payments are active
	di.RegisterToken(c, paymentsDI.Facilitator, func(sr di.ServiceRegistry) app.Facilitator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := facilitator.NewClient(cfg.Payments.FacilitatorURL, log)
		if err != nil {
			panic("failed to create facilitator client: " + err.Error())
		}
		return client
	})

	// Register Gate (public)
	di.RegisterToken(c, paymentsDI.Gate, func(sr di.ServiceRegistry) *app.Gate {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		network, err := domain.LookupNetwork(cfg.Payments.Network)
		if err != nil {
			panic("failed to configure payments: " + err.Error())
		}
		spec := domain.PriceSpec{
			Network:           network,
			PayTo:             cfg.Payments.PayTo,
			PriceUSD:          cfg.Payments.PriceDecimal(),
			MaxTimeoutSeconds: int(cfg.Payments.MaxTimeout.Seconds()),
		}

		if !cfg.Payments.Active() {
			return app.NewGate(false, spec, nil, log)
		}
		return app.NewGate(true, spec, paymentsDI.GetFacilitator(sr), log)
	})

	// Register Paywall (public - used by modules exposing paid routes)
	di.RegisterToken(c, paymentsDI.Paywall, func(sr di.ServiceRegistry) *x402.Paywall {
		log := sr.Get("logger").(logger.LoggerInterface)
		return x402.NewPaywall(paymentsDI.GetGate(sr), log)
	})

	return nil
}

// Startup initializes the payments module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config().Payments

	gate := paymentsDI.GetGate(mono.Services())
	if !gate.Enabled() {
		log.Warn(ctx, "payments disabled, paid routes are free",
			"enabled", cfg.Enabled,
			"pay_to", cfg.PayTo)
		return nil
	}

	log.Info(ctx, "payments module started",
		"network", cfg.Network,
		"price_usd", cfg.PriceDecimal().String(),
		"pay_to", cfg.PayTo,
		"facilitator", cfg.FacilitatorURL)
	return nil
}

// Package di contains dependency injection tokens for the payments context.
package di

import (
	"github.com/fd1az/slippage-sentinel/business/payments/app"
	"github.com/fd1az/slippage-sentinel/business/payments/infra/x402"
	"github.com/fd1az/slippage-sentinel/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Gate    = di.NewToken[*app.Gate]("payments.Gate")
	Paywall = di.NewToken[*x402.Paywall]("payments.Paywall")
)

// Private dependency tokens - internal to payments module
var (
	Facilitator = di.NewToken[app.Facilitator]("payments:facilitator")
)

func GetGate(c di.ServiceRegistry) *app.Gate {
	return di.GetToken(c, Gate)
}

func GetPaywall(c di.ServiceRegistry) *x402.Paywall {
	return di.GetToken(c, Paywall)
}

func GetFacilitator(c di.ServiceRegistry) app.Facilitator {
	return di.GetToken(c, Facilitator)
}

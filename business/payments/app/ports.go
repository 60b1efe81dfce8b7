// Package app contains the payment gate and its port definitions.
package app

import (
	"context"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
)

// Facilitator verifies and settles payments on behalf of the service.
type Facilitator interface {
	Verify(ctx context.Context, payload domain.Payload, req domain.Requirements) (*domain.VerifyResult, error)
	Settle(ctx context.Context, payload domain.Payload, req domain.Requirements) (*domain.Settlement, error)
}

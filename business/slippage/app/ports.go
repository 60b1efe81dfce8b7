// Package app contains application services and port definitions for the slippage context.
package app

import (
	"context"

	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
)

// PoolSource returns the pools trading tokenIn against tokenOut.
type PoolSource interface {
	// FetchPools returns matching pools in provider order. An empty slice means nothing matched;
	// an error is reserved for unexpected faults.
	FetchPools(ctx context.Context, tokenIn, tokenOut string, hint domain.RouteHint) ([]domain.NormalizedPool, error)
}

// PoolProvider is a named pool data source backed by one external API.
type PoolProvider interface {
	PoolSource

	// Name identifies the provider in logs and metrics.
	Name() string
}

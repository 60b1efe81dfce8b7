package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

const tracerName = "github.com/fd1az/slippage-sentinel/business/slippage/app"

// PoolAggregator queries providers in order and returns the first non-empty result.
type PoolAggregator struct {
	providers []PoolProvider
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

// NewPoolAggregator creates an aggregator. Providers are tried in the given order, primary first.
func NewPoolAggregator(log logger.LoggerInterface, providers ...PoolProvider) *PoolAggregator {
	return &PoolAggregator{
		providers: providers,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
}

// Providers returns the providers in query order.
func (a *PoolAggregator) Providers() []PoolProvider {
	return a.providers
}

// FetchPools implements PoolSource. Later providers are never called once one yields pools.
func (a *PoolAggregator) FetchPools(ctx context.Context, tokenIn, tokenOut string, hint domain.RouteHint) ([]domain.NormalizedPool, error) {
	ctx, span := a.tracer.Start(ctx, "slippage.aggregator.fetch_pools",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn),
			attribute.String("token_out", tokenOut),
			attribute.String("route_hint", string(hint)),
		),
	)
	defer span.End()

	for _, p := range a.providers {
		pools, err := p.FetchPools(ctx, tokenIn, tokenOut, hint)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if len(pools) > 0 {
			span.SetAttributes(
				attribute.String("provider", p.Name()),
				attribute.Int("pools", len(pools)),
			)
			a.logger.Debug(ctx, "pools resolved", "provider", p.Name(), "pools", len(pools))
			return pools, nil
		}
		a.logger.Debug(ctx, "provider returned no pools", "provider", p.Name())
	}

	// A cancelled request is an error, not an empty result.
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return nil, nil
}

package app

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/asset"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

const (
	metricEstimates    = "slippage_estimates_total"
	metricSlippageBps  = "slippage_recommended_bps"
	outcomeSuccess     = "success"
	outcomeBadAddress  = "invalid_address"
	outcomeNoPool      = "no_pool"
	outcomeCalcFailure = "failed"
)

// Result is the outcome of one estimation. The error variant lives inside Output.
type Result struct {
	Output domain.SafeSlippageOutput
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithMeterProvider sets the meter provider used for estimator metrics.
func WithMeterProvider(mp metric.MeterProvider) EstimatorOption {
	return func(e *Estimator) {
		e.meterProvider = mp
	}
}

// Estimator turns a trade request into a slippage recommendation.
type Estimator struct {
	pools         PoolSource
	bounds        domain.Bounds
	logger        logger.LoggerInterface
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	estimates     metric.Int64Counter
	slippageBps   metric.Int64Histogram
}

// NewEstimator creates an Estimator reading pools from source.
func NewEstimator(source PoolSource, bounds domain.Bounds, log logger.LoggerInterface, opts ...EstimatorOption) (*Estimator, error) {
	e := &Estimator{
		pools:  source,
		bounds: bounds,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.meterProvider == nil {
		e.meterProvider = otel.GetMeterProvider()
	}

	meter := e.meterProvider.Meter(tracerName)

	var err error
	e.estimates, err = meter.Int64Counter(metricEstimates,
		metric.WithDescription("Slippage estimations by outcome"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimates counter: %w", err)
	}

	e.slippageBps, err = meter.Int64Histogram(metricSlippageBps,
		metric.WithDescription("Recommended slippage tolerance"),
		metric.WithUnit("bps"),
		metric.WithExplicitBucketBoundaries(50, 75, 100, 150, 200, 300, 500, 750, 1000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create slippage histogram: %w", err)
	}

	return e, nil
}

// GetSafeSlippage estimates a safe tolerance for input. It never fails: every error,
// including a panic in the pipeline, is reported through Result.Output.
func (e *Estimator) GetSafeSlippage(ctx context.Context, input domain.SafeSlippageInput) (result Result) {
	ctx, span := e.tracer.Start(ctx, "slippage.estimate",
		trace.WithAttributes(
			attribute.String("token_in", input.TokenIn),
			attribute.String("token_out", input.TokenOut),
			attribute.Float64("amount_in", input.AmountIn),
			attribute.String("route_hint", string(input.RouteHint)),
		),
	)
	defer span.End()

	if !asset.IsValidAddress(input.TokenIn) {
		return e.finish(ctx, span, outcomeBadAddress, domain.Failure(domain.InvalidTokenAddress("token_in")))
	}
	if !asset.IsValidAddress(input.TokenOut) {
		return e.finish(ctx, span, outcomeBadAddress, domain.Failure(domain.InvalidTokenAddress("token_out")))
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(ctx, "slippage estimation panicked", "panic", r)
			result = e.finish(ctx, span, outcomeCalcFailure, domain.Failure(domain.CalculationFailed(fmt.Sprint(r))))
		}
	}()

	pools, err := e.pools.FetchPools(ctx, input.TokenIn, input.TokenOut, input.RouteHint)
	if err != nil {
		span.RecordError(err)
		e.logger.Error(ctx, "failed to fetch pools", "error", err)
		return e.finish(ctx, span, outcomeCalcFailure, domain.Failure(domain.CalculationFailed(err.Error())))
	}
	if len(pools) == 0 {
		return e.finish(ctx, span, outcomeNoPool, domain.Failure(domain.MsgNoPoolFound))
	}

	// The first pool's price is the reference for the whole trade.
	tradeUSD := input.AmountIn * pools[0].PriceUSD
	if math.IsNaN(tradeUSD) || math.IsInf(tradeUSD, 0) {
		return e.finish(ctx, span, outcomeCalcFailure, domain.Failure(domain.CalculationFailed("trade size is not a finite number")))
	}

	m := domain.AnalyzePools(pools, tradeUSD, e.bounds)

	span.SetAttributes(
		attribute.Int("pools", len(pools)),
		attribute.Float64("trade_usd", tradeUSD),
		attribute.Int64("slip_bps", m.MaxSafeSlipBps),
	)
	e.slippageBps.Record(ctx, m.MaxSafeSlipBps)

	e.logger.Info(ctx, "slippage estimated",
		"token_in", input.TokenIn,
		"token_out", input.TokenOut,
		"pools", len(pools),
		"trade_usd", tradeUSD,
		"slip_bps", m.MaxSafeSlipBps)

	return e.finish(ctx, span, outcomeSuccess, domain.Success(domain.Estimate{
		MinSafeSlipBps:     m.MaxSafeSlipBps,
		PoolDepths:         domain.Round2(m.MaxPoolDepth),
		RecentTradeSizeP95: m.MaxTradeP95,
		VolatilityIndex:    domain.Round2(m.MaxVolatility),
	}))
}

func (e *Estimator) finish(ctx context.Context, span trace.Span, outcome string, out domain.SafeSlippageOutput) Result {
	span.SetAttributes(attribute.String("outcome", outcome))
	if out.IsError() {
		span.SetStatus(codes.Error, out.Error)
	}
	e.estimates.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return Result{Output: out}
}

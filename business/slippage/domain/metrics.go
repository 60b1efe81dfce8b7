package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Default estimator bounds.
const (
	MinSlippageBps = 50   // 0.5%
	MaxSlippageBps = 1000 // 10%
	FeeOverheadPct = 0.3  // swap fee allowance in percent
)

var (
	hundred             = decimal.NewFromInt(100)
	ten                 = decimal.NewFromInt(10)
	maxBaseSlippagePct  = decimal.NewFromInt(5)
	maxFinalSlippagePct = decimal.NewFromInt(10)
	p95Factor           = decimal.RequireFromString("0.95")
)

// Bounds configures the clamps applied to a recommendation.
type Bounds struct {
	MinSlippageBps int64
	MaxSlippageBps int64
	FeeOverheadPct float64
}

// DefaultBounds returns the standard 50–1000 bps window with a 0.3% fee overhead.
func DefaultBounds() Bounds {
	return Bounds{
		MinSlippageBps: MinSlippageBps,
		MaxSlippageBps: MaxSlippageBps,
		FeeOverheadPct: FeeOverheadPct,
	}
}

// PoolMetrics is the most cautious view across a set of pools.
// Every field is a pointwise maximum, never an average.
type PoolMetrics struct {
	MaxSafeSlipBps int64
	MaxPoolDepth   float64
	MaxTradeP95    float64
	MaxVolatility  float64
}

// AnalyzePools reduces pools to PoolMetrics for a trade of tradeAmountUSD.
// Pools with non-finite or non-positive liquidity are skipped; with none left the
// result is the seeded floor (MinSlippageBps and zeros). tradeAmountUSD must be finite.
func AnalyzePools(pools []NormalizedPool, tradeAmountUSD float64, bounds Bounds) PoolMetrics {
	trade := decimal.NewFromFloat(tradeAmountUSD)
	fee := decimal.NewFromFloat(bounds.FeeOverheadPct)
	tradeP95 := trade.Mul(p95Factor).Round(2)

	maxSlip := bounds.MinSlippageBps
	maxDepth := decimal.Zero
	maxP95 := decimal.Zero
	maxVol := decimal.Zero

	for _, pool := range pools {
		if !isFinite(pool.Liquidity.USD) || pool.Liquidity.USD <= 0 {
			continue
		}
		depth := decimal.NewFromFloat(pool.Liquidity.USD)

		change := pool.PriceChange.H24
		if !isFinite(change) {
			change = 0
		}
		volatility := decimal.NewFromFloat(change).Abs()

		// Price impact proxy: trade size against depth, +1 keeps shallow pools finite.
		depthRatio := trade.Div(depth.Add(decimal.NewFromInt(1)))
		basePct := clamp(depthRatio.Mul(hundred), decimal.Zero, maxBaseSlippagePct)

		finalPct := decimal.Min(basePct.Add(volatility.Div(ten)).Add(fee), maxFinalSlippagePct)

		safeBps := finalPct.Mul(hundred).Ceil().IntPart()
		if safeBps < bounds.MinSlippageBps {
			safeBps = bounds.MinSlippageBps
		}
		if safeBps > bounds.MaxSlippageBps {
			safeBps = bounds.MaxSlippageBps
		}

		if safeBps > maxSlip {
			maxSlip = safeBps
		}
		if depth.GreaterThan(maxDepth) {
			maxDepth = depth
		}
		if tradeP95.GreaterThan(maxP95) {
			maxP95 = tradeP95
		}
		if volatility.GreaterThan(maxVol) {
			maxVol = volatility
		}
	}

	return PoolMetrics{
		MaxSafeSlipBps: maxSlip,
		MaxPoolDepth:   maxDepth.InexactFloat64(),
		MaxTradeP95:    maxP95.InexactFloat64(),
		MaxVolatility:  maxVol.InexactFloat64(),
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

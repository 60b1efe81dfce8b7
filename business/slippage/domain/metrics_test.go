package domain

import (
	"math"
	"testing"
)

func pool(liq, h24 float64) NormalizedPool {
	return NormalizedPool{
		PairAddress: "0xpair",
		PriceUSD:    2000,
		Liquidity:   Liquidity{USD: liq},
		PriceChange: PriceChange{H24: h24},
	}
}

func TestAnalyzePools_WorkedExample(t *testing.T) {
	// 10 units at $2000 against $1M of depth with a +1.5% day.
	got := AnalyzePools([]NormalizedPool{pool(1_000_000, 1.5)}, 20_000, DefaultBounds())

	want := PoolMetrics{
		MaxSafeSlipBps: 245,
		MaxPoolDepth:   1_000_000,
		MaxTradeP95:    19_000,
		MaxVolatility:  1.5,
	}
	if got != want {
		t.Errorf("AnalyzePools() = %+v, want %+v", got, want)
	}
}

func TestAnalyzePools_CeilsExactPercentages(t *testing.T) {
	// Percentages that land on a whole bps must not round up from binary float noise.
	tests := []struct {
		h24  float64
		want int64
	}{
		{h24: 2.8, want: 58},   // 0.28 + 0.3
		{h24: 3.3, want: 63},   // 0.33 + 0.3
		{h24: -7.1, want: 101}, // 0.71 + 0.3
	}

	for _, tt := range tests {
		got := AnalyzePools([]NormalizedPool{pool(1_000_000, tt.h24)}, 0, DefaultBounds())
		if got.MaxSafeSlipBps != tt.want {
			t.Errorf("h24=%v: MaxSafeSlipBps = %d, want %d", tt.h24, got.MaxSafeSlipBps, tt.want)
		}
	}
}

func TestAnalyzePools_Clamps(t *testing.T) {
	tests := []struct {
		name     string
		liq      float64
		h24      float64
		trade    float64
		expected int64
	}{
		{"tiny trade floors at min", 1_000_000_000, 0, 1, MinSlippageBps},
		{"huge trade caps base at 5%", 10, 0, 1_000_000, 530},
		{"extreme volatility caps at max", 10, 500, 1_000_000, MaxSlippageBps},
		{"negative change counts as magnitude", 1_000_000, -1.5, 20_000, 245},
		{"zero trade is fee only", 1_000_000, 0, 0, MinSlippageBps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzePools([]NormalizedPool{pool(tt.liq, tt.h24)}, tt.trade, DefaultBounds())
			if got.MaxSafeSlipBps != tt.expected {
				t.Errorf("MaxSafeSlipBps = %d, want %d", got.MaxSafeSlipBps, tt.expected)
			}
			if got.MaxSafeSlipBps < MinSlippageBps || got.MaxSafeSlipBps > MaxSlippageBps {
				t.Errorf("MaxSafeSlipBps %d outside [%d, %d]", got.MaxSafeSlipBps, MinSlippageBps, MaxSlippageBps)
			}
		})
	}
}

func TestAnalyzePools_SkipsUnusablePools(t *testing.T) {
	pools := []NormalizedPool{
		pool(0, 90),
		pool(-5, 90),
		pool(math.NaN(), 90),
		pool(math.Inf(1), 90),
	}

	got := AnalyzePools(pools, 20_000, DefaultBounds())
	want := PoolMetrics{MaxSafeSlipBps: MinSlippageBps}
	if got != want {
		t.Errorf("AnalyzePools() = %+v, want seeded floor %+v", got, want)
	}

	got = AnalyzePools(nil, 20_000, DefaultBounds())
	if got != want {
		t.Errorf("AnalyzePools(nil) = %+v, want %+v", got, want)
	}
}

func TestAnalyzePools_NonFiniteChangeCountsAsZero(t *testing.T) {
	got := AnalyzePools([]NormalizedPool{pool(1_000_000, math.NaN())}, 20_000, DefaultBounds())
	if got.MaxVolatility != 0 {
		t.Errorf("MaxVolatility = %v, want 0", got.MaxVolatility)
	}
	// 1.99998% + 0.3% -> 230 bps
	if got.MaxSafeSlipBps != 230 {
		t.Errorf("MaxSafeSlipBps = %d, want 230", got.MaxSafeSlipBps)
	}
}

func TestAnalyzePools_TakesPointwiseMaxima(t *testing.T) {
	pools := []NormalizedPool{
		pool(5_000_000, 0.5),
		pool(200_000, 3),
		pool(0, 40),
	}

	got := AnalyzePools(pools, 20_000, DefaultBounds())
	if got.MaxPoolDepth != 5_000_000 {
		t.Errorf("MaxPoolDepth = %v, want 5000000", got.MaxPoolDepth)
	}
	if got.MaxVolatility != 3 {
		t.Errorf("MaxVolatility = %v, want 3 (skipped pool must not count)", got.MaxVolatility)
	}
	// shallow pool: ~10% impact capped at 5, plus 0.3 volatility and 0.3 fee
	if got.MaxSafeSlipBps != 560 {
		t.Errorf("MaxSafeSlipBps = %d, want 560", got.MaxSafeSlipBps)
	}
}

func TestAnalyzePools_Idempotent(t *testing.T) {
	pools := []NormalizedPool{pool(750_000, 2.25), pool(3_000_000, -0.4)}

	first := AnalyzePools(pools, 12_345.67, DefaultBounds())
	second := AnalyzePools(pools, 12_345.67, DefaultBounds())
	if first != second {
		t.Errorf("AnalyzePools not deterministic: %+v != %+v", first, second)
	}
}

func TestAnalyzePools_CustomBounds(t *testing.T) {
	bounds := Bounds{MinSlippageBps: 100, MaxSlippageBps: 300, FeeOverheadPct: 0}

	got := AnalyzePools([]NormalizedPool{pool(10, 0)}, 1_000_000, bounds)
	if got.MaxSafeSlipBps != 300 {
		t.Errorf("MaxSafeSlipBps = %d, want 300", got.MaxSafeSlipBps)
	}

	got = AnalyzePools([]NormalizedPool{pool(1_000_000_000, 0)}, 1, bounds)
	if got.MaxSafeSlipBps != 100 {
		t.Errorf("MaxSafeSlipBps = %d, want 100", got.MaxSafeSlipBps)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{1.234, 1.23},
		{-1.235, -1.24},
		{1_000_000, 1_000_000},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

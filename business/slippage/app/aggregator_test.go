package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
)

func testPools(n int) []domain.NormalizedPool {
	pools := make([]domain.NormalizedPool, n)
	for i := range pools {
		pools[i] = domain.NormalizedPool{
			PairAddress: "0xpair",
			PriceUSD:    2000,
			Liquidity:   domain.Liquidity{USD: 1_000_000},
		}
	}
	return pools
}

func TestPoolAggregator_PrimaryFirst(t *testing.T) {
	tests := []struct {
		name           string
		primary        []domain.NormalizedPool
		secondary      []domain.NormalizedPool
		wantPools      int
		wantSecondCall int
	}{
		{"primary wins", testPools(2), testPools(5), 2, 0},
		{"falls back when primary empty", nil, testPools(3), 3, 1},
		{"both empty", nil, nil, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &mockProvider{name: "dexscreener", pools: tt.primary}
			secondary := &mockProvider{name: "geckoterminal", pools: tt.secondary}
			agg := NewPoolAggregator(&mockLogger{}, primary, secondary)

			pools, err := agg.FetchPools(context.Background(), "0xa", "0xb", "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pools) != tt.wantPools {
				t.Errorf("got %d pools, want %d", len(pools), tt.wantPools)
			}
			if primary.calls != 1 {
				t.Errorf("primary called %d times, want 1", primary.calls)
			}
			if secondary.calls != tt.wantSecondCall {
				t.Errorf("secondary called %d times, want %d", secondary.calls, tt.wantSecondCall)
			}
		})
	}
}

func TestPoolAggregator_ErrorStopsIteration(t *testing.T) {
	boom := errors.New("decode failure")
	primary := &mockProvider{name: "dexscreener", err: boom}
	secondary := &mockProvider{name: "geckoterminal", pools: testPools(1)}
	agg := NewPoolAggregator(&mockLogger{}, primary, secondary)

	_, err := agg.FetchPools(context.Background(), "0xa", "0xb", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times after error, want 0", secondary.calls)
	}
}

func TestPoolAggregator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewPoolAggregator(&mockLogger{}, &mockProvider{name: "dexscreener"})
	_, err := agg.FetchPools(ctx, "0xa", "0xb", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

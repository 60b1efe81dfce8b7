package domain

import (
	"encoding/json"
	"testing"
)

const (
	weth = "0x4200000000000000000000000000000000000006"
	usdc = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawInput
		wantValid  bool
		wantAmount float64
		wantReason string
	}{
		{
			name:       "numeric amount",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`10`)},
			wantValid:  true,
			wantAmount: 10,
		},
		{
			name:       "string amount is coerced",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`"2.5"`)},
			wantValid:  true,
			wantAmount: 2.5,
		},
		{
			name:       "missing token_in",
			raw:        RawInput{TokenOut: usdc, AmountIn: json.RawMessage(`1`)},
			wantReason: "token_in is required",
		},
		{
			name:       "missing token_out",
			raw:        RawInput{TokenIn: weth, AmountIn: json.RawMessage(`1`)},
			wantReason: "token_out is required",
		},
		{
			name:       "missing amount",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc},
			wantReason: "amount_in must be a number",
		},
		{
			name:       "non numeric amount",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`"ten"`)},
			wantReason: "amount_in must be a number",
		},
		{
			name:       "zero amount",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`0`)},
			wantReason: "amount_in must be positive",
		},
		{
			name:       "negative amount",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`-3`)},
			wantReason: "amount_in must be positive",
		},
		{
			name:       "overflowing amount",
			raw:        RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`1e400`)},
			wantReason: "amount_in must be finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateInput(tt.raw)
			if v.Valid() != tt.wantValid {
				t.Fatalf("Valid() = %v, want %v (reason %q)", v.Valid(), tt.wantValid, v.Reason())
			}
			if !tt.wantValid {
				if v.Reason() != tt.wantReason {
					t.Errorf("Reason() = %q, want %q", v.Reason(), tt.wantReason)
				}
				return
			}
			if v.Input().AmountIn != tt.wantAmount {
				t.Errorf("AmountIn = %v, want %v", v.Input().AmountIn, tt.wantAmount)
			}
		})
	}
}

func TestValidateInput_KeepsRouteHint(t *testing.T) {
	v := ValidateInput(RawInput{TokenIn: weth, TokenOut: usdc, AmountIn: json.RawMessage(`1`), RouteHint: "base/0xabc"})
	if !v.Valid() {
		t.Fatalf("unexpected rejection: %s", v.Reason())
	}
	if !v.Input().RouteHint.IsPairLocator() {
		t.Error("expected pair locator hint")
	}
}

func TestRouteHint(t *testing.T) {
	tests := []struct {
		hint      RouteHint
		wantPair  bool
		wantChain string
	}{
		{"", false, ""},
		{"base", false, "base"},
		{" ethereum ", false, "ethereum"},
		{"base/0x1234", true, ""},
	}
	for _, tt := range tests {
		if got := tt.hint.IsPairLocator(); got != tt.wantPair {
			t.Errorf("RouteHint(%q).IsPairLocator() = %v, want %v", tt.hint, got, tt.wantPair)
		}
		if got := tt.hint.Chain(); got != tt.wantChain {
			t.Errorf("RouteHint(%q).Chain() = %q, want %q", tt.hint, got, tt.wantChain)
		}
	}
}

func TestSafeSlippageOutput_JSON(t *testing.T) {
	success := Success(Estimate{MinSafeSlipBps: 245, PoolDepths: 1_000_000, RecentTradeSizeP95: 19_000, VolatilityIndex: 0})
	b, err := json.Marshal(success)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"min_safe_slip_bps":245,"pool_depths":1000000,"recent_trade_size_p95":19000,"volatility_index":0}`
	if string(b) != want {
		t.Errorf("success JSON = %s, want %s", b, want)
	}

	failure := Failure(MsgNoPoolFound)
	b, err = json.Marshal(failure)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want = `{"error":"No matching liquidity pool found for this token pair."}`
	if string(b) != want {
		t.Errorf("failure JSON = %s, want %s", b, want)
	}

	var decoded SafeSlippageOutput
	if err := json.Unmarshal([]byte(`{"min_safe_slip_bps":245,"pool_depths":1000000,"recent_trade_size_p95":19000,"volatility_index":1.5}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.IsError() || decoded.Estimate.VolatilityIndex != 1.5 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestErrorMessages(t *testing.T) {
	if got := InvalidTokenAddress("token_in"); got != "Invalid token address format: token_in" {
		t.Errorf("InvalidTokenAddress() = %q", got)
	}
	if got := CalculationFailed("boom"); got != "Failed to calculate safe slippage: boom" {
		t.Errorf("CalculationFailed() = %q", got)
	}
}

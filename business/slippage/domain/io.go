package domain

import (
	"encoding/json"
	"fmt"
)

// Output messages returned to callers.
const (
	MsgNoPoolFound          = "No matching liquidity pool found for this token pair."
	msgInvalidTokenAddress  = "Invalid token address format: %s"
	msgCalculationFailedFmt = "Failed to calculate safe slippage: %s"
)

// InvalidTokenAddress returns the error message for a malformed token address field.
func InvalidTokenAddress(field string) string {
	return fmt.Sprintf(msgInvalidTokenAddress, field)
}

// CalculationFailed returns the error message for an unexpected estimation fault.
func CalculationFailed(reason string) string {
	return fmt.Sprintf(msgCalculationFailedFmt, reason)
}

// SafeSlippageInput is a validated estimation request.
type SafeSlippageInput struct {
	TokenIn   string    `json:"token_in"`
	TokenOut  string    `json:"token_out"`
	AmountIn  float64   `json:"amount_in"`
	RouteHint RouteHint `json:"route_hint,omitempty"`
}

// Estimate is a successful recommendation.
type Estimate struct {
	MinSafeSlipBps     int64   `json:"min_safe_slip_bps"`
	PoolDepths         float64 `json:"pool_depths"`
	RecentTradeSizeP95 float64 `json:"recent_trade_size_p95"`
	VolatilityIndex    float64 `json:"volatility_index"`
}

// SafeSlippageOutput carries either an Estimate or an error message, never both.
type SafeSlippageOutput struct {
	Estimate *Estimate
	Error    string
}

// Success wraps an estimate.
func Success(e Estimate) SafeSlippageOutput {
	return SafeSlippageOutput{Estimate: &e}
}

// Failure wraps an error message.
func Failure(msg string) SafeSlippageOutput {
	return SafeSlippageOutput{Error: msg}
}

// IsError reports whether the output is the error variant.
func (o SafeSlippageOutput) IsError() bool {
	return o.Error != "" || o.Estimate == nil
}

type outputWire struct {
	MinSafeSlipBps     *int64   `json:"min_safe_slip_bps,omitempty"`
	PoolDepths         *float64 `json:"pool_depths,omitempty"`
	RecentTradeSizeP95 *float64 `json:"recent_trade_size_p95,omitempty"`
	VolatilityIndex    *float64 `json:"volatility_index,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// MarshalJSON emits exactly one variant.
func (o SafeSlippageOutput) MarshalJSON() ([]byte, error) {
	if o.IsError() {
		return json.Marshal(outputWire{Error: o.Error})
	}
	e := o.Estimate
	return json.Marshal(outputWire{
		MinSafeSlipBps:     &e.MinSafeSlipBps,
		PoolDepths:         &e.PoolDepths,
		RecentTradeSizeP95: &e.RecentTradeSizeP95,
		VolatilityIndex:    &e.VolatilityIndex,
	})
}

// UnmarshalJSON accepts either variant.
func (o *SafeSlippageOutput) UnmarshalJSON(data []byte) error {
	var w outputWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Error != "" || w.MinSafeSlipBps == nil {
		*o = Failure(w.Error)
		return nil
	}
	e := Estimate{MinSafeSlipBps: *w.MinSafeSlipBps}
	if w.PoolDepths != nil {
		e.PoolDepths = *w.PoolDepths
	}
	if w.RecentTradeSizeP95 != nil {
		e.RecentTradeSizeP95 = *w.RecentTradeSizeP95
	}
	if w.VolatilityIndex != nil {
		e.VolatilityIndex = *w.VolatilityIndex
	}
	*o = Success(e)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/business/payments/infra/evm"
	"github.com/fd1az/slippage-sentinel/internal/httpclient"
	"github.com/fd1az/slippage-sentinel/pkg/ui"
)

// Input is the getSafeSlippage request input.
type Input struct {
	TokenIn   string  `json:"token_in"`
	TokenOut  string  `json:"token_out"`
	AmountIn  float64 `json:"amount_in"`
	RouteHint string  `json:"route_hint,omitempty"`
}

type invokeBody struct {
	Input Input `json:"input"`
}

type invokeOutput struct {
	Output struct {
		MinSafeSlipBps     *int64  `json:"min_safe_slip_bps"`
		PoolDepths         float64 `json:"pool_depths"`
		RecentTradeSizeP95 float64 `json:"recent_trade_size_p95"`
		VolatilityIndex    float64 `json:"volatility_index"`
		Error              string  `json:"error"`
	} `json:"output"`
}

// caller invokes the paid entrypoint, paying when asked to.
type caller struct {
	client      httpclient.Client
	signer      *evm.Signer // nil without PRIVATE_KEY
	header      string      // pre-built X-PAYMENT
	network     string
	maxAttempts int
	retryDelay  time.Duration
	progress    func(format string, args ...any)
}

func (c *caller) call(ctx context.Context, endpoint string, input Input) (ui.Report, error) {
	report := ui.Report{Endpoint: endpoint}
	header := c.header

	var resp *httpclient.Response
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		report.Attempts = attempt
		if attempt > 1 {
			c.progress("payment pending, retry %d/%d in %s", attempt, c.maxAttempts, c.retryDelay)
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req := c.client.NewRequest().
			SetHeader("Content-Type", "application/json").
			SetBody(invokeBody{Input: input})
		if header != "" {
			req = req.SetHeader(domain.HeaderPayment, header)
		}

		var err error
		resp, err = req.Post(ctx, endpoint)
		if err != nil {
			return report, fmt.Errorf("request failed: %w", err)
		}
		if resp.StatusCode != http.StatusPaymentRequired {
			break
		}

		signed, err := c.pay(resp.Body())
		if err != nil {
			c.progress("cannot pay: %v", err)
			break
		}
		header = signed
	}

	report.Status = resp.StatusCode
	report.PaymentError = resp.Header.Get(domain.HeaderPaymentError)
	report.Body = prettyJSON(resp.Body())

	if h := resp.Header.Get(domain.HeaderPaymentResponse); h != "" {
		if s, err := domain.DecodeSettlement(h); err == nil {
			report.Payment = &ui.Payment{Transaction: s.Transaction, Network: s.Network, Payer: s.Payer}
		}
	}

	if resp.IsSuccess() {
		var out invokeOutput
		if err := json.Unmarshal(resp.Body(), &out); err == nil {
			switch {
			case out.Output.Error != "":
				report.OutputError = out.Output.Error
			case out.Output.MinSafeSlipBps != nil:
				report.Recommendation = &ui.Recommendation{
					Bps:        *out.Output.MinSafeSlipBps,
					PoolDepth:  out.Output.PoolDepths,
					TradeP95:   out.Output.RecentTradeSizeP95,
					Volatility: out.Output.VolatilityIndex,
				}
			}
		}
	}

	return report, nil
}

// pay signs a payment for the terms of a 402 body.
func (c *caller) pay(body []byte) (string, error) {
	if c.signer == nil {
		return "", fmt.Errorf("PRIVATE_KEY is not set")
	}

	var required domain.PaymentRequiredResponse
	if err := json.Unmarshal(body, &required); err != nil {
		return "", fmt.Errorf("unreadable 402 response: %w", err)
	}

	for _, req := range required.Accepts {
		if req.Scheme != domain.SchemeExact || !strings.EqualFold(req.Network, c.network) {
			continue
		}
		payload, err := c.signer.Pay(req)
		if err != nil {
			return "", err
		}
		c.progress("signed %s base units of USDC on %s to %s", req.MaxAmountRequired, req.Network, req.PayTo)
		return payload.Encode()
	}
	return "", fmt.Errorf("agent does not accept exact payments on %s", c.network)
}

func prettyJSON(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return strings.TrimSpace(string(body))
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(out)
}

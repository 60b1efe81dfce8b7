package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/business/payments/infra/evm"
	"github.com/fd1az/slippage-sentinel/internal/httpclient"
)

const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func newCaller(t *testing.T, signer *evm.Signer) *caller {
	t.Helper()
	client, err := httpclient.NewInstrumentedClient(httpclient.WithProviderName("test"))
	if err != nil {
		t.Fatal(err)
	}
	return &caller{
		client:      client,
		signer:      signer,
		network:     "base",
		maxAttempts: 3,
		progress:    func(string, ...any) {},
	}
}

func paidAgent(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		header := r.Header.Get(domain.HeaderPayment)
		if header == "" {
			w.Header().Set(domain.HeaderPaymentError, "PAYMENT_REQUIRED")
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(domain.PaymentRequiredResponse{
				X402Version: 1,
				Error:       "payment required",
				Accepts: []domain.Requirements{{
					Scheme:            domain.SchemeExact,
					Network:           "base",
					MaxAmountRequired: "20000",
					PayTo:             "0x1111111111111111111111111111111111111111",
					MaxTimeoutSeconds: 60,
					Asset:             "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
				}},
			})
			return
		}

		payload, err := domain.DecodePayload(header)
		if err != nil {
			t.Errorf("bad payment header: %v", err)
		}
		payer, err := evm.RecoverPayer(payload)
		if err != nil || payer.Hex() != payload.Payload.Authorization.From {
			t.Errorf("signature does not recover the payer: %v", err)
		}

		settlement, _ := domain.Settlement{Success: true, Transaction: "0xtx", Network: "base", Payer: payer.Hex()}.Encode()
		w.Header().Set(domain.HeaderPaymentResponse, settlement)
		w.Write([]byte(`{"output":{"min_safe_slip_bps":245,"pool_depths":1000000,"recent_trade_size_p95":19000,"volatility_index":1.5}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCaller_PaysAndRetries(t *testing.T) {
	calls := 0
	server := paidAgent(t, &calls)

	signer, err := evm.NewSigner(testKey)
	if err != nil {
		t.Fatal(err)
	}

	report, err := newCaller(t, signer).call(context.Background(), server.URL, Input{
		TokenIn:  "0x4200000000000000000000000000000000000006",
		TokenOut: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		AmountIn: 1,
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if calls != 2 || report.Attempts != 2 {
		t.Errorf("calls = %d, attempts = %d, want 2", calls, report.Attempts)
	}
	if report.Status != http.StatusOK {
		t.Fatalf("status = %d", report.Status)
	}
	if report.Payment == nil || report.Payment.Transaction != "0xtx" {
		t.Errorf("payment not decoded: %+v", report.Payment)
	}
	if report.Recommendation == nil || report.Recommendation.Bps != 245 || report.Recommendation.Volatility != 1.5 {
		t.Errorf("recommendation not decoded: %+v", report.Recommendation)
	}
}

func TestCaller_NoKeyStopsAt402(t *testing.T) {
	calls := 0
	server := paidAgent(t, &calls)

	report, err := newCaller(t, nil).call(context.Background(), server.URL, Input{AmountIn: 1})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if report.Status != http.StatusPaymentRequired || report.PaymentError != "PAYMENT_REQUIRED" {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestCaller_ErrorOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":{"error":"Invalid token address format: token_in"}}`))
	}))
	defer server.Close()

	report, err := newCaller(t, nil).call(context.Background(), server.URL, Input{TokenIn: "bad", AmountIn: 1})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if report.OutputError != "Invalid token address format: token_in" || report.Recommendation != nil {
		t.Errorf("unexpected report %+v", report)
	}
}

package facilitator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/internal/apperror"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

var (
	testPayload = domain.Payload{
		X402Version: 1,
		Scheme:      domain.SchemeExact,
		Network:     "base",
		Payload: domain.ExactPayload{
			Signature: "0xsig",
			Authorization: domain.Authorization{
				From:  "0x2222222222222222222222222222222222222222",
				To:    "0x1111111111111111111111111111111111111111",
				Value: "20000",
			},
		},
	}
	testRequirements = domain.Requirements{
		Scheme:            domain.SchemeExact,
		Network:           "base",
		MaxAmountRequired: "20000",
		PayTo:             "0x1111111111111111111111111111111111111111",
	}
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/", &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestClient_Verify_SendsProtocolBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/verify" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body request
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.X402Version != 1 {
			t.Errorf("x402Version = %d", body.X402Version)
		}
		if body.PaymentPayload.Payload.Signature != "0xsig" {
			t.Errorf("payload not forwarded: %+v", body.PaymentPayload)
		}
		if body.PaymentRequirements.MaxAmountRequired != "20000" {
			t.Errorf("requirements not forwarded: %+v", body.PaymentRequirements)
		}
		w.Write([]byte(`{"isValid":true,"payer":"0x2222222222222222222222222222222222222222"}`))
	})

	result, err := c.Verify(context.Background(), testPayload, testRequirements)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.IsValid || result.Payer == "" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestClient_Verify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantValid bool
		wantErr   bool
		reason    string
	}{
		{name: "rejected with 200", status: http.StatusOK, body: `{"isValid":false,"invalidReason":"invalid_signature"}`, reason: "invalid_signature"},
		{name: "rejected with 400", status: http.StatusBadRequest, body: `{"isValid":false,"invalidReason":"insufficient_funds"}`, reason: "insufficient_funds"},
		{name: "400 without verdict", status: http.StatusBadRequest, body: `{"error":"bad"}`, wantErr: true},
		{name: "server error", status: http.StatusBadGateway, body: `upstream down`, wantErr: true},
		{name: "garbage body", status: http.StatusOK, body: `<html>`, wantErr: true},
		{name: "empty body", status: http.StatusOK, body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			result, err := c.Verify(context.Background(), testPayload, testRequirements)
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeFacilitatorError {
					t.Fatalf("expected FACILITATOR_ERROR, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsValid != tt.wantValid || result.InvalidReason != tt.reason {
				t.Errorf("unexpected result %+v", result)
			}
		})
	}
}

func TestClient_Settle(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/settle" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"success":true,"transaction":"0xtx","network":"base","payer":"0xpayer"}`))
		})

		s, err := c.Settle(context.Background(), testPayload, testRequirements)
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if !s.Success || s.Transaction != "0xtx" || s.Network != "base" {
			t.Errorf("unexpected settlement %+v", s)
		}
	})

	t.Run("failure reason on 400", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"errorReason":"authorization_expired"}`))
		})

		s, err := c.Settle(context.Background(), testPayload, testRequirements)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Success || s.ErrorReason != "authorization_expired" {
			t.Errorf("unexpected settlement %+v", s)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		c, err := NewClient("http://127.0.0.1:1", &mockLogger{})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.Settle(context.Background(), testPayload, testRequirements); apperror.GetCode(err) != apperror.CodeFacilitatorError {
			t.Errorf("expected FACILITATOR_ERROR, got %v", err)
		}
	})
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient("", &mockLogger{}); err == nil {
		t.Error("expected error for empty url")
	}
}

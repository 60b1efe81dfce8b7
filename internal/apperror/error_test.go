package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_ErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message_only",
			err:  New(CodePaymentRequired),
			want: "Payment required",
		},
		{
			name: "with_context",
			err:  New(CodeDexScreenerAPIError, WithContext("HTTP 502")),
			want: "DexScreener API error: HTTP 502",
		},
		{
			name: "with_cause",
			err: New(CodeInvalidProviderResponse,
				WithContext("decode pairs"),
				WithCause(errors.New("unexpected EOF"))),
			want: "Failed to fetch pool data: decode pairs: unexpected EOF",
		},
		{
			name: "unknown_code_falls_back_to_code",
			err:  New(Code("SOMETHING_ELSE")),
			want: "SOMETHING_ELSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAppError_DefaultStatusCodes(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodePaymentRequired, http.StatusPaymentRequired},
		{CodePaymentVerificationFailed, http.StatusPaymentRequired},
		{CodeInvalidTokenAddress, http.StatusBadRequest},
		{CodePoolNotFound, http.StatusNotFound},
		{CodeDexScreenerAPIError, http.StatusServiceUnavailable},
		{CodeCircuitOpen, http.StatusServiceUnavailable},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code).StatusCode; got != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWrap_PreservesAppError(t *testing.T) {
	original := New(CodeFacilitatorError)
	wrapped := fmt.Errorf("settle: %w", original)

	got := Wrap(wrapped, CodeInternalError, "payments")
	if got != original {
		t.Fatal("expected Wrap to return the wrapped AppError")
	}
	if got.Context != "payments" {
		t.Errorf("expected context to be filled, got %q", got.Context)
	}
	if GetCode(wrapped) != CodeFacilitatorError {
		t.Errorf("expected code %s, got %s", CodeFacilitatorError, GetCode(wrapped))
	}
	if !errors.Is(wrapped, New(CodeFacilitatorError)) {
		t.Error("expected errors.Is to match on code")
	}
}

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInstrumentedClient_GetDecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/tokens/0xabc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "a b&c" {
			t.Errorf("expected encoded query, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "sentinel-test" {
			t.Errorf("expected user agent sentinel-test, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(
		WithProviderName("test"),
		WithBaseURL(server.URL+"/"),
		WithUserAgent("sentinel-test"),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	var result struct {
		Status string `json:"status"`
	}
	resp, err := client.NewRequest().
		SetQueryParam("q", "a b&c").
		SetResult(&result).
		Get(context.Background(), "/latest/dex/tokens/0xabc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if resp.DecodeErr() != nil {
		t.Errorf("unexpected decode error: %v", resp.DecodeErr())
	}
	if result.Status != "ok" {
		t.Errorf("expected status ok, got %q", result.Status)
	}
}

func TestInstrumentedClient_DecodeErrorIsReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	var result map[string]any
	resp, err := client.NewRequest().SetResult(&result).Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.DecodeErr() == nil {
		t.Error("expected decode error for non-JSON body")
	}
	if resp.Result() != nil {
		t.Error("expected nil result when decoding fails")
	}
}

func TestInstrumentedClient_PostWithErrorHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["x"] != 1 {
			t.Errorf("expected body x=1, got %v", body)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	errUpstream := errors.New("upstream failed")
	resp, err := client.NewRequestWithOptions(
		WithLabels(NewLabel("endpoint", "verify")),
		WithResponseErrorHandler(func(status int, body []byte) error {
			if status >= 500 {
				return errUpstream
			}
			return nil
		}),
	).SetBody(map[string]int{"x": 1}).Post(context.Background(), "/verify")

	if !errors.Is(err, errUpstream) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusBadGateway {
		t.Error("expected response to be returned alongside handler error")
	}
}

package apm

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
	}{
		{"zipkin", ZipkinProvider},
		{"otlp", OTLPGRPCProvider},
		{"OTLP-GRPC", OTLPGRPCProvider},
		{"otlp-http", OTLPHTTPProvider},
		{" console ", ConsoleProvider},
		{"", EmptyProvider},
		{"jaeger", EmptyProvider},
	}
	for _, tt := range tests {
		if got := ParseProvider(tt.in); got != tt.want {
			t.Errorf("ParseProvider(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewTraceProvider_Empty(t *testing.T) {
	tp, err := NewTraceProvider("test", useEmpty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}

func TestNewTraceProvider_OptionError(t *testing.T) {
	boom := errors.New("exporter down")
	failing := func(o *TracerOptions) { o.err = boom }

	if _, err := NewTraceProvider("test", failing); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
}

func TestTracer_StartServerSpan(t *testing.T) {
	tracer := NewTracer("apm-test")
	req := httptest.NewRequest("POST", "/entrypoints/getSafeSlippage/invoke", nil)

	ctx, span := tracer.StartServerSpan(req, "invoke")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected context")
	}
	// The global provider is a no-op here, so no trace id is assigned.
	if id := span.TraceID(); id != "" {
		t.Errorf("TraceID() = %q, want empty for no-op provider", id)
	}
	span.NoticeError(nil)

	if got := tracer.SpanFromContext(context.Background()).TraceID(); got != "" {
		t.Errorf("SpanFromContext(background).TraceID() = %q", got)
	}
}

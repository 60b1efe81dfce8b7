// Package x402 puts HTTP routes behind the x402 payment gate.
package x402

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/internal/apperror"
	"github.com/fd1az/slippage-sentinel/internal/logger"
	"github.com/fd1az/slippage-sentinel/internal/server"
)

// Gate is the payment decision the paywall delegates to. *app.Gate implements it.
type Gate interface {
	Enabled() bool
	Requirements(resource, description string) domain.Requirements
	Verify(ctx context.Context, header string, req domain.Requirements) (*domain.Payload, error)
	Settle(ctx context.Context, payload domain.Payload, req domain.Requirements) (*domain.Settlement, error)
}

// Paywall builds payment middleware for routes.
type Paywall struct {
	gate   Gate
	logger logger.LoggerInterface
}

// NewPaywall creates a paywall on top of gate.
func NewPaywall(gate Gate, log logger.LoggerInterface) *Paywall {
	return &Paywall{gate: gate, logger: log}
}

// Protect charges for every call to the wrapped handler.
// The payment is verified before the handler runs and settled only when it answers 2xx.
func (p *Paywall) Protect(description string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.gate.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			req := p.gate.Requirements(resourceURL(r), description)

			payload, err := p.gate.Verify(ctx, r.Header.Get(domain.HeaderPayment), req)
			if err != nil {
				p.reject(w, err, req)
				return
			}

			buf := newBufferedWriter()
			next.ServeHTTP(buf, r)

			if buf.status < 200 || buf.status >= 300 {
				buf.flush(w, buf.body.Bytes())
				return
			}

			settlement, err := p.gate.Settle(ctx, *payload, req)
			if err != nil {
				p.reject(w, err, req)
				return
			}

			encoded, err := settlement.Encode()
			if err != nil {
				server.WriteError(w, apperror.Internal(apperror.CodeInternalError, "encode settlement", err))
				return
			}
			w.Header().Set(domain.HeaderPaymentResponse, encoded)
			w.Header().Set("Access-Control-Expose-Headers", domain.HeaderPaymentResponse)

			buf.flush(w, withPayment(buf.body.Bytes(), settlement))
		})
	}
}

// reject answers 402 with the accepted terms for payment problems.
// Facilitator outages keep their own status.
func (p *Paywall) reject(w http.ResponseWriter, err error, req domain.Requirements) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.StatusCode != http.StatusPaymentRequired {
		server.WriteError(w, err)
		return
	}

	w.Header().Set(domain.HeaderPaymentError, string(appErr.Code))
	server.WriteJSON(w, http.StatusPaymentRequired, domain.PaymentRequiredResponse{
		X402Version: domain.X402Version,
		Error:       appErr.Error(),
		Accepts:     []domain.Requirements{req},
	})
}

func resourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// withPayment adds the settlement under "payment" when body is a JSON object.
func withPayment(body []byte, settlement *domain.Settlement) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return body
	}
	raw, err := json.Marshal(settlement)
	if err != nil {
		return body
	}
	obj["payment"] = raw
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return append(out, '\n')
}

// bufferedWriter holds the handler's response until the payment is settled.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedWriter) WriteHeader(status int) { b.status = status }

func (b *bufferedWriter) flush(w http.ResponseWriter, body []byte) {
	for k, v := range b.header {
		if k == "Content-Length" {
			continue
		}
		w.Header()[k] = v
	}
	w.WriteHeader(b.status)
	w.Write(body)
}

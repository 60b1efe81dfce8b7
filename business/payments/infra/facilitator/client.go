// Package facilitator is the HTTP client for an x402 facilitator (/verify and /settle).
package facilitator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/internal/apperror"
	"github.com/fd1az/slippage-sentinel/internal/httpclient"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

const (
	providerName = "facilitator"
	tracerName   = "github.com/fd1az/slippage-sentinel/business/payments/infra/facilitator"

	verifyPath = "/verify"
	settlePath = "/settle"

	defaultTimeout = 30 * time.Second
)

// Client talks to a facilitator service.
type Client struct {
	client httpclient.Client
	logger logger.LoggerInterface
}

type request struct {
	X402Version         int                 `json:"x402Version"`
	PaymentPayload      domain.Payload      `json:"paymentPayload"`
	PaymentRequirements domain.Requirements `json:"paymentRequirements"`
}

// NewClient creates a facilitator client for baseURL.
func NewClient(baseURL string, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("facilitator url is required")
	}

	clientOpts := []httpclient.ClientOption{
		httpclient.WithProviderName(providerName),
		httpclient.WithBaseURL(strings.TrimRight(baseURL, "/")),
		httpclient.WithRequestTimeout(defaultTimeout),
		httpclient.WithTraceOptions(otel.Tracer(tracerName), httpclient.TraceRequest),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	}

	client, err := httpclient.NewInstrumentedClient(append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{client: client, logger: log}, nil
}

// Verify asks the facilitator whether payload satisfies req.
// A 4xx answer carrying a verdict is returned as an invalid result, not an error.
func (c *Client) Verify(ctx context.Context, payload domain.Payload, req domain.Requirements) (*domain.VerifyResult, error) {
	var result domain.VerifyResult
	resp, err := c.post(ctx, verifyPath, payload, req, &result)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		if verdict, ok := decodeVerdict(resp.Body()); ok {
			return verdict, nil
		}
		return nil, statusError("verify", resp)
	}
	return &result, nil
}

// Settle asks the facilitator to execute payload on chain.
func (c *Client) Settle(ctx context.Context, payload domain.Payload, req domain.Requirements) (*domain.Settlement, error) {
	var result domain.Settlement
	resp, err := c.post(ctx, settlePath, payload, req, &result)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		var s domain.Settlement
		if json.Unmarshal(resp.Body(), &s) == nil && s.ErrorReason != "" {
			return &s, nil
		}
		return nil, statusError("settle", resp)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload domain.Payload, req domain.Requirements, result any) (*httpclient.Response, error) {
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", strings.TrimPrefix(path, "/"))),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetBody(request{
			X402Version:         domain.X402Version,
			PaymentPayload:      payload,
			PaymentRequirements: req,
		}).
		SetResult(result).
		Post(ctx, path)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		c.logger.Warn(ctx, "facilitator request failed", "path", path, "error", err)
		return nil, apperror.New(apperror.CodeFacilitatorError,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	if resp.IsSuccess() {
		if decodeErr := resp.DecodeErr(); decodeErr != nil || len(resp.Body()) == 0 {
			return nil, apperror.New(apperror.CodeFacilitatorError,
				apperror.WithCause(decodeErr),
				apperror.WithContext(path+": unreadable response"))
		}
	}
	return resp, nil
}

func decodeVerdict(body []byte) (*domain.VerifyResult, bool) {
	var v struct {
		IsValid       *bool  `json:"isValid"`
		InvalidReason string `json:"invalidReason"`
		Payer         string `json:"payer"`
	}
	if err := json.Unmarshal(body, &v); err != nil || v.IsValid == nil {
		return nil, false
	}
	return &domain.VerifyResult{IsValid: *v.IsValid, InvalidReason: v.InvalidReason, Payer: v.Payer}, true
}

func statusError(op string, resp *httpclient.Response) error {
	return apperror.New(apperror.CodeFacilitatorError,
		apperror.WithContext(fmt.Sprintf("%s: HTTP %d", op, resp.StatusCode)))
}

// errorHandler fails only on server errors; 4xx bodies carry the facilitator's verdict.
func errorHandler(statusCode int, body []byte) error {
	if statusCode < 500 {
		return nil
	}
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	return apperror.New(apperror.CodeFacilitatorError,
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", statusCode, snippet)))
}

// Package geckoterminal implements the secondary pool provider backed by the GeckoTerminal API.
package geckoterminal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/apperror"
	"github.com/fd1az/slippage-sentinel/internal/asset"
	"github.com/fd1az/slippage-sentinel/internal/circuitbreaker"
	"github.com/fd1az/slippage-sentinel/internal/httpclient"
	"github.com/fd1az/slippage-sentinel/internal/logger"
	"github.com/fd1az/slippage-sentinel/internal/ratelimit"
)

const (
	// ProviderName identifies this provider in logs, metrics and health checks.
	ProviderName = "geckoterminal"

	// DefaultBaseURL is the public GeckoTerminal API.
	DefaultBaseURL = "https://api.geckoterminal.com"

	tracerName = "github.com/fd1az/slippage-sentinel/business/slippage/infra/geckoterminal"

	defaultTimeout = 10 * time.Second
	// GeckoTerminal's public tier allows 30 calls per minute.
	defaultRequestsPerMinute = 30
)

// Config holds GeckoTerminal client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	UserAgent         string
}

// DefaultConfig returns the public API settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           defaultTimeout,
		RequestsPerMinute: defaultRequestsPerMinute,
	}
}

// Provider fetches pools from GeckoTerminal. It lists pools per network, so it needs a chain hint.
type Provider struct {
	client   httpclient.Client
	breaker  *circuitbreaker.CircuitBreaker[*poolsResponse]
	limiter  *ratelimit.Limiter
	networks asset.ChainAliases
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewProvider creates a GeckoTerminal provider.
func NewProvider(cfg Config, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	clientOpts := []httpclient.ClientOption{
		httpclient.WithProviderName(ProviderName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, httpclient.WithUserAgent(cfg.UserAgent))
	}

	client, err := httpclient.NewInstrumentedClient(append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig(ProviderName)
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Provider{
		client:   client,
		breaker:  circuitbreaker.New[*poolsResponse](cbCfg),
		limiter:  ratelimit.New(cfg.RequestsPerMinute),
		networks: asset.GeckoTerminalNetworks,
		logger:   log,
		tracer:   tracer,
	}, nil
}

// Name implements app.PoolProvider.
func (p *Provider) Name() string {
	return ProviderName
}

// Healthy reports whether the circuit breaker is letting calls through.
func (p *Provider) Healthy() bool {
	return p.breaker.Healthy()
}

// FetchPools implements app.PoolProvider.
// Without a chain hint, or with a pair locator, it returns no pools and makes no request.
func (p *Provider) FetchPools(ctx context.Context, tokenIn, tokenOut string, hint domain.RouteHint) ([]domain.NormalizedPool, error) {
	chain := hint.Chain()
	if chain == "" {
		return nil, nil
	}
	network := p.networks.Resolve(chain)
	path := "/api/v2/networks/" + url.PathEscape(network) + "/pools"

	ctx, span := p.tracer.Start(ctx, "geckoterminal.fetch_pools",
		trace.WithAttributes(attribute.String("network", network)),
	)
	defer span.End()

	// Local throttling is not an upstream outage: it must not read as "no pools".
	if err := p.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		p.logger.Warn(ctx, "geckoterminal rate limiter wait aborted", "error", err)
		return nil, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext(ProviderName),
			apperror.WithCause(err))
	}

	body, err := p.breaker.Execute(func() (*poolsResponse, error) {
		return p.get(ctx, path, network)
	})
	if err != nil {
		span.RecordError(err)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeInvalidProviderResponse {
			return nil, err
		}
		p.logger.Warn(ctx, "geckoterminal unavailable, returning no pools",
			"network", network,
			"error", err,
			"circuit_open", circuitbreaker.IsOpen(err))
		return nil, nil
	}

	pools := make([]domain.NormalizedPool, 0, len(body.Data))
	for _, r := range body.Data {
		if !asset.MatchesPair(r.baseAddress(), r.quoteAddress(), tokenIn, tokenOut) {
			continue
		}
		pools = append(pools, r.toDomain(network))
	}

	span.SetAttributes(
		attribute.Int("listed", len(body.Data)),
		attribute.Int("pools", len(pools)),
	)
	p.logger.Debug(ctx, "geckoterminal pools fetched", "network", network, "listed", len(body.Data), "matched", len(pools))

	return pools, nil
}

func (p *Provider) get(ctx context.Context, path, network string) (*poolsResponse, error) {
	var result poolsResponse
	resp, err := p.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "network_pools"),
			httpclient.NewLabel("network", network),
		),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetResult(&result).
		Get(ctx, path)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.New(apperror.CodeGeckoTerminalAPIError,
			apperror.WithCause(err),
			apperror.WithContext("request failed"))
	}

	if len(resp.Body()) == 0 {
		return nil, apperror.New(apperror.CodeInvalidProviderResponse,
			apperror.WithContext("geckoterminal returned an empty body"))
	}
	if decodeErr := resp.DecodeErr(); decodeErr != nil {
		return nil, apperror.New(apperror.CodeInvalidProviderResponse,
			apperror.WithCause(decodeErr),
			apperror.WithContext("geckoterminal"))
	}

	return &result, nil
}

// errorHandler turns non-2xx responses into GECKOTERMINAL_API_ERROR.
func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	return apperror.New(apperror.CodeGeckoTerminalAPIError,
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", statusCode, snippet)))
}

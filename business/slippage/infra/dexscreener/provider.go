// Package dexscreener implements the primary pool provider backed by the DexScreener API.
package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
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
	ProviderName = "dexscreener"

	// DefaultBaseURL is the public DexScreener API.
	DefaultBaseURL = "https://api.dexscreener.com"

	tokensEndpoint = "/latest/dex/tokens/"
	pairsEndpoint  = "/latest/dex/pairs/"

	tracerName = "github.com/fd1az/slippage-sentinel/business/slippage/infra/dexscreener"

	defaultTimeout           = 10 * time.Second
	defaultRequestsPerMinute = 300
)

// Config holds DexScreener client settings.
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

// Provider fetches pools from DexScreener.
type Provider struct {
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[*pairsResponse]
	limiter *ratelimit.Limiter
	chains  asset.ChainAliases
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewProvider creates a DexScreener provider. Extra client options are applied after the defaults.
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
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest),
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
		client:  client,
		breaker: circuitbreaker.New[*pairsResponse](cbCfg),
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		chains:  asset.DexScreenerChains,
		logger:  log,
		tracer:  tracer,
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
// A pair-locator hint queries that pair directly; otherwise all pairs of tokenIn are listed and,
// when the hint names a chain, restricted to it. Unreachable or failing upstreams yield no pools;
// running out of the local request budget before the deadline is an error.
func (p *Provider) FetchPools(ctx context.Context, tokenIn, tokenOut string, hint domain.RouteHint) ([]domain.NormalizedPool, error) {
	path, endpoint := buildPath(tokenIn, hint)

	ctx, span := p.tracer.Start(ctx, "dexscreener.fetch_pools",
		trace.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("path", path),
		),
	)
	defer span.End()

	// Local throttling is not an upstream outage: it must not read as "no pools".
	if err := p.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		p.logger.Warn(ctx, "dexscreener rate limiter wait aborted", "error", err)
		return nil, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext(ProviderName),
			apperror.WithCause(err))
	}

	body, err := p.breaker.Execute(func() (*pairsResponse, error) {
		return p.get(ctx, path, endpoint)
	})
	if err != nil {
		span.RecordError(err)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeInvalidProviderResponse {
			return nil, err
		}
		p.logger.Warn(ctx, "dexscreener unavailable, returning no pools",
			"error", err,
			"circuit_open", circuitbreaker.IsOpen(err))
		return nil, nil
	}

	chain := ""
	if c := hint.Chain(); c != "" {
		chain = p.chains.Resolve(c)
	}

	pairs := body.all()
	pools := make([]domain.NormalizedPool, 0, len(pairs))
	for _, pr := range pairs {
		if chain != "" && strings.ToLower(pr.ChainID) != chain {
			continue
		}
		if !asset.MatchesPair(pr.baseAddress(), pr.quoteAddress(), tokenIn, tokenOut) {
			continue
		}
		pools = append(pools, pr.toDomain())
	}

	span.SetAttributes(
		attribute.Int("pairs", len(pairs)),
		attribute.Int("pools", len(pools)),
	)
	p.logger.Debug(ctx, "dexscreener pools fetched", "pairs", len(pairs), "matched", len(pools), "chain", chain)

	return pools, nil
}

func (p *Provider) get(ctx context.Context, path, endpoint string) (*pairsResponse, error) {
	var result pairsResponse
	resp, err := p.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", endpoint)),
		httpclient.WithResponseErrorHandler(errorHandler),
	).
		SetResult(&result).
		Get(ctx, path)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.New(apperror.CodeDexScreenerAPIError,
			apperror.WithCause(err),
			apperror.WithContext("request failed"))
	}

	if len(resp.Body()) == 0 {
		return nil, apperror.New(apperror.CodeInvalidProviderResponse,
			apperror.WithContext("dexscreener returned an empty body"))
	}
	if decodeErr := resp.DecodeErr(); decodeErr != nil {
		return nil, apperror.New(apperror.CodeInvalidProviderResponse,
			apperror.WithCause(decodeErr),
			apperror.WithContext("dexscreener"))
	}

	return &result, nil
}

// buildPath returns the request path and its metric label.
func buildPath(tokenIn string, hint domain.RouteHint) (string, string) {
	if hint.IsPairLocator() {
		segments := strings.Split(strings.TrimSpace(string(hint)), "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		return pairsEndpoint + strings.Join(segments, "/"), "pairs"
	}
	return tokensEndpoint + url.PathEscape(tokenIn), "tokens"
}

// errorHandler turns non-2xx responses into DEXSCREENER_API_ERROR.
func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	return apperror.New(apperror.CodeDexScreenerAPIError,
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", statusCode, snippet)))
}

// Package main is slipcheck, a client that pays for and calls the getSafeSlippage entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/business/payments/infra/evm"
	"github.com/fd1az/slippage-sentinel/internal/httpclient"
	"github.com/fd1az/slippage-sentinel/pkg/ui"
)

const (
	invokePath     = "/entrypoints/getSafeSlippage/invoke"
	defaultBaseURL = "http://localhost:8787"

	defaultTokenIn  = "0x4200000000000000000000000000000000000006" // WETH on Base
	defaultTokenOut = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913" // USDC on Base
)

func main() {
	_ = godotenv.Load()

	baseURL := env("API_BASE_URL", defaultBaseURL)
	endpoint := flag.String("endpoint", env("PAY_AND_CALL_ENDPOINT", baseURL+invokePath), "Entrypoint URL")
	tokenIn := flag.String("token-in", env("PAY_AND_CALL_TOKEN_IN", defaultTokenIn), "Input token address")
	tokenOut := flag.String("token-out", env("PAY_AND_CALL_TOKEN_OUT", defaultTokenOut), "Output token address")
	amount := flag.Float64("amount", envFloat("PAY_AND_CALL_AMOUNT", 1), "Amount of token_in")
	route := flag.String("route", env("PAY_AND_CALL_ROUTE", "base"), "Route hint: chain name or chain/pair")
	payment := flag.String("payment", os.Getenv("X_PAYMENT"), "Pre-built X-PAYMENT header")
	network := flag.String("network", env("NETWORK", "base"), "Payment network")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	progress := func(format string, args ...any) {
		fmt.Fprintln(os.Stderr, ui.MutedValue.Render(fmt.Sprintf(format, args...)))
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("slipcheck"),
		httpclient.WithRequestTimeout(*timeout),
		httpclient.WithUserAgent("slipcheck/0.1"),
	)
	if err != nil {
		fail(err)
	}

	c := &caller{
		client:      client,
		header:      *payment,
		network:     *network,
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
		progress:    progress,
	}

	if key := os.Getenv("PRIVATE_KEY"); key != "" {
		signer, err := evm.NewSigner(key)
		if err != nil {
			fail(err)
		}
		c.signer = signer
		progress("paying from %s on %s", signer.Address().Hex(), *network)
	} else if *payment == "" {
		progress("PRIVATE_KEY is not set; calls to a paid agent will stop at 402")
	}

	balance := ""
	if rpcURL := os.Getenv("RPC_URL"); rpcURL != "" && c.signer != nil {
		balance = usdcBalance(ctx, rpcURL, *network, c.signer)
	}

	report, err := c.call(ctx, *endpoint, Input{
		TokenIn:   *tokenIn,
		TokenOut:  *tokenOut,
		AmountIn:  *amount,
		RouteHint: *route,
	})
	if err != nil {
		fail(err)
	}
	if c.signer != nil {
		report.Payer = c.signer.Address().Hex()
		report.PayerBalance = balance
	}

	fmt.Println(ui.RenderReport(report))
	if report.Status != 200 {
		os.Exit(1)
	}
}

// usdcBalance reads the payer's balance; failures only cost the line in the report.
func usdcBalance(ctx context.Context, rpcURL, networkName string, signer *evm.Signer) string {
	network, err := domain.LookupNetwork(networkName)
	if err != nil {
		return ""
	}
	checker, closeFn, err := evm.DialBalanceChecker(ctx, rpcURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.MutedValue.Render(err.Error()))
		return ""
	}
	defer closeFn()

	balance, err := checker.USDCBalance(ctx, network, signer.Address())
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.MutedValue.Render(err.Error()))
		return ""
	}
	return balance.StringFixed(2)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("error: ")+err.Error())
	os.Exit(1)
}

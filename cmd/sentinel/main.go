// Package main is the entry point for the Slippage Sentinel agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/slippage-sentinel/business/payments"
	"github.com/fd1az/slippage-sentinel/business/slippage"
	"github.com/fd1az/slippage-sentinel/internal/apm"
	"github.com/fd1az/slippage-sentinel/internal/config"
	"github.com/fd1az/slippage-sentinel/internal/health"
	"github.com/fd1az/slippage-sentinel/internal/logger"
	"github.com/fd1az/slippage-sentinel/internal/metrics"
	"github.com/fd1az/slippage-sentinel/internal/monolith"
	"github.com/fd1az/slippage-sentinel/internal/server"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const defaultZipkinURL = "http://localhost:9411/api/v2/spans"

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("slippage-sentinel %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if version != "dev" {
		cfg.App.Version = version
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting slippage sentinel",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// Initialize observability if enabled
	if cfg.Telemetry.Enabled {
		stop, err := setupTelemetry(ctx, cfg.Telemetry, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	// Start health check server
	healthServer := health.NewServer(cfg.Server.HealthPort, cfg.App.Version, log)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		healthServer.Stop(stopCtx)
	}()

	router := server.NewRouter(cfg.Server, log)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log, router, healthServer)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Define modules in dependency order
	modules := []monolith.Module{
		&payments.Module{}, // Provides the paywall
		&slippage.Module{}, // Mounts the paid entrypoint
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if cfg.Payments.Active() {
		log.Info(ctx, "agent is ready for payments via x402")
	} else {
		log.Warn(ctx, "agent is running in test mode (payments disabled)")
	}

	return server.New(cfg.Server, router, log).Run(ctx)
}

// setupTelemetry installs tracing and metrics. The returned func flushes both.
func setupTelemetry(ctx context.Context, cfg config.TelemetryConfig, log logger.LoggerInterface) (func(), error) {
	provider := apm.ParseProvider(cfg.TraceProvider)
	endpoint := cfg.OTLPEndpoint
	if provider == apm.ZipkinProvider && endpoint == "" {
		endpoint = defaultZipkinURL
	}

	traceProvider, err := apm.NewTraceProvider(cfg.ServiceName, apm.WithProvider(provider, endpoint, nil, log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", provider, "endpoint", endpoint)

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
	}
	if provider == apm.OTLPGRPCProvider && endpoint != "" {
		insecure := strings.HasPrefix(endpoint, "http://")
		metricOpts = append(metricOpts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(endpoint, nil, insecure)))
	}

	meterProvider, err := metrics.NewMetricProvider(ctx, metricOpts...)
	if err != nil {
		traceProvider.Stop()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Start Prometheus metrics server in background
	port := cfg.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go func() {
		if err := metrics.ServePrometheusMetrics(ctx, log, metrics.WithPort(strconv.Itoa(port))); err != nil {
			log.Error(ctx, "prometheus metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "meter provider shutdown failed", "error", err)
		}
		if err := traceProvider.Stop(); err != nil {
			log.Warn(shutdownCtx, "trace provider shutdown failed", "error", err)
		}
	}, nil
}

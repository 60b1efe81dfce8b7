// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultPayToAddress is the placeholder recipient; payments stay disabled while it is configured.
const DefaultPayToAddress = "0xb308ed39d67D0d4BAe5BC2FAEF60c66BBb6AE429"

// Config holds all application configuration.
type Config struct {
	App           AppConfig       `mapstructure:"app"`
	Server        ServerConfig    `mapstructure:"server"`
	DexScreener   ProviderConfig  `mapstructure:"dexscreener"`
	GeckoTerminal ProviderConfig  `mapstructure:"geckoterminal"`
	Slippage      SlippageConfig  `mapstructure:"slippage"`
	Payments      PaymentsConfig  `mapstructure:"payments"`
	Telemetry     TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Description string `mapstructure:"description"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the public API server settings.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	HealthPort     int           `mapstructure:"health_port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the listen address of the API server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ProviderConfig holds settings for one pool data provider.
type ProviderConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	UserAgent         string        `mapstructure:"user_agent"`
}

// SlippageConfig holds the estimator bounds.
type SlippageConfig struct {
	MinBps         int64   `mapstructure:"min_bps"`
	MaxBps         int64   `mapstructure:"max_bps"`
	FeeOverheadPct float64 `mapstructure:"fee_overhead_pct"`
}

// PaymentsConfig holds x402 payment gate settings.
type PaymentsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	FacilitatorURL string        `mapstructure:"facilitator_url"`
	PayTo          string        `mapstructure:"pay_to"`
	Network        string        `mapstructure:"network"`
	DefaultPrice   string        `mapstructure:"default_price"`
	MaxTimeout     time.Duration `mapstructure:"max_timeout"`
}

// Active reports whether calls must be paid for.
// A placeholder recipient keeps the agent in test mode.
func (c PaymentsConfig) Active() bool {
	return c.Enabled && !strings.EqualFold(c.PayTo, DefaultPayToAddress)
}

// PriceDecimal returns the per-call price in USD.
func (c PaymentsConfig) PriceDecimal() decimal.Decimal {
	price, err := decimal.NewFromString(strings.TrimPrefix(c.DefaultPrice, "$"))
	if err != nil {
		return decimal.Zero
	}
	return price
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SENTINEL_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SENTINEL_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SENTINEL_LOG_LEVEL", "LOG_LEVEL")

	// Server
	v.BindEnv("server.port", "SENTINEL_PORT", "PORT")
	v.BindEnv("server.health_port", "SENTINEL_HEALTH_PORT", "HEALTH_PORT")

	// Providers
	v.BindEnv("dexscreener.base_url", "SENTINEL_DEXSCREENER_BASE_URL", "DEX_SCREENER_BASE_URL")
	v.BindEnv("geckoterminal.base_url", "SENTINEL_GECKOTERMINAL_BASE_URL", "GECKO_TERMINAL_BASE_URL")

	// Payments
	v.BindEnv("payments.enabled", "SENTINEL_PAYMENTS_ENABLED", "PAYMENTS_ENABLED")
	v.BindEnv("payments.facilitator_url", "SENTINEL_FACILITATOR_URL", "FACILITATOR_URL")
	v.BindEnv("payments.pay_to", "SENTINEL_PAY_TO", "PAY_TO")
	v.BindEnv("payments.network", "SENTINEL_NETWORK", "NETWORK")
	v.BindEnv("payments.default_price", "SENTINEL_DEFAULT_PRICE", "DEFAULT_PRICE")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SENTINEL_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SENTINEL_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SENTINEL_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "slippage-sentinel")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.description", "Estimate safe slippage tolerance for any route")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "20s")

	// Provider defaults
	userAgent := "slippage-sentinel/0.1 (+https://daydreams.systems)"
	v.SetDefault("dexscreener.base_url", "https://api.dexscreener.com")
	v.SetDefault("dexscreener.timeout", "10s")
	v.SetDefault("dexscreener.requests_per_minute", 300)
	v.SetDefault("dexscreener.user_agent", userAgent)
	v.SetDefault("geckoterminal.base_url", "https://api.geckoterminal.com")
	v.SetDefault("geckoterminal.timeout", "10s")
	v.SetDefault("geckoterminal.requests_per_minute", 30)
	v.SetDefault("geckoterminal.user_agent", userAgent)

	// Slippage bounds
	v.SetDefault("slippage.min_bps", 50)
	v.SetDefault("slippage.max_bps", 1000)
	v.SetDefault("slippage.fee_overhead_pct", 0.3)

	// Payments defaults
	v.SetDefault("payments.enabled", true)
	v.SetDefault("payments.facilitator_url", "https://facilitator.daydreams.systems")
	v.SetDefault("payments.pay_to", DefaultPayToAddress)
	v.SetDefault("payments.network", "base")
	v.SetDefault("payments.default_price", "0.02")
	v.SetDefault("payments.max_timeout", "60s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "slippage-sentinel")
	v.SetDefault("telemetry.trace_provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DexScreener.BaseURL == "" {
		return fmt.Errorf("dexscreener.base_url is required")
	}
	if c.GeckoTerminal.BaseURL == "" {
		return fmt.Errorf("geckoterminal.base_url is required")
	}
	if c.Slippage.MinBps <= 0 || c.Slippage.MaxBps < c.Slippage.MinBps {
		return fmt.Errorf("invalid slippage bounds: min=%d max=%d", c.Slippage.MinBps, c.Slippage.MaxBps)
	}
	if c.Slippage.FeeOverheadPct < 0 {
		return fmt.Errorf("slippage.fee_overhead_pct cannot be negative")
	}
	if !strings.HasPrefix(c.Payments.PayTo, "0x") || !common.IsHexAddress(c.Payments.PayTo) {
		return fmt.Errorf("invalid payments.pay_to: %s", c.Payments.PayTo)
	}
	if c.Payments.Network == "" {
		return fmt.Errorf("payments.network is required")
	}
	if !c.Payments.PriceDecimal().IsPositive() {
		return fmt.Errorf("invalid payments.default_price: %s", c.Payments.DefaultPrice)
	}
	if c.Payments.Enabled && c.Payments.FacilitatorURL == "" {
		return fmt.Errorf("payments.facilitator_url is required when payments are enabled")
	}
	return nil
}

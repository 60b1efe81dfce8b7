package httpapi

import (
	"github.com/fd1az/slippage-sentinel/internal/config"
)

// Manifest describes the agent and its entrypoints to clients.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Entrypoints []Entrypoint    `json:"entrypoints"`
	Payments    ManifestPayment `json:"payments"`
}

// Entrypoint describes one callable entrypoint. Field maps give type names, "?" marks optional.
type Entrypoint struct {
	Key         string            `json:"key"`
	Description string            `json:"description"`
	Path        string            `json:"path"`
	Price       string            `json:"price,omitempty"`
	Input       map[string]string `json:"input"`
	Output      map[string]any    `json:"output"`
}

// ManifestPayment advertises how to pay.
type ManifestPayment struct {
	Enabled        bool   `json:"enabled"`
	FacilitatorURL string `json:"facilitatorUrl"`
	PayTo          string `json:"payTo"`
	Network        string `json:"network"`
	DefaultPrice   string `json:"defaultPrice"`
}

// NewManifest builds the manifest from configuration.
func NewManifest(appCfg config.AppConfig, payCfg config.PaymentsConfig) Manifest {
	price := ""
	if payCfg.Active() {
		price = payCfg.PriceDecimal().String()
	}

	return Manifest{
		Name:        appCfg.Name,
		Version:     appCfg.Version,
		Description: appCfg.Description,
		Entrypoints: []Entrypoint{{
			Key:         EntrypointKey,
			Description: "Estimate safe slippage tolerance for a given swap route",
			Path:        InvokePath,
			Price:       price,
			Input: map[string]string{
				"token_in":   "string",
				"token_out":  "string",
				"amount_in":  "number",
				"route_hint": "string?",
			},
			Output: map[string]any{
				"min_safe_slip_bps":     "number",
				"pool_depths":           "number",
				"recent_trade_size_p95": "number",
				"volatility_index":      "number",
				"error":                 "string?",
				"payment": map[string]string{
					"success":     "boolean",
					"transaction": "string",
					"network":     "string",
					"payer":       "string",
				},
			},
		}},
		Payments: ManifestPayment{
			Enabled:        payCfg.Active(),
			FacilitatorURL: payCfg.FacilitatorURL,
			PayTo:          payCfg.PayTo,
			Network:        payCfg.Network,
			DefaultPrice:   payCfg.DefaultPrice,
		},
	}
}

package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Payment is a settled payment as reported by the agent.
type Payment struct {
	Transaction string
	Network     string
	Payer       string
}

// Recommendation is a successful slippage estimate.
type Recommendation struct {
	Bps        int64
	PoolDepth  float64
	TradeP95   float64
	Volatility float64
}

// Report is everything slipcheck shows about one call.
type Report struct {
	Endpoint       string
	Payer          string
	PayerBalance   string // USDC, empty when unknown
	Status         int
	Attempts       int
	Payment        *Payment
	PaymentError   string
	Body           string
	Recommendation *Recommendation
	OutputError    string
}

// RenderReport formats r for the terminal.
func RenderReport(r Report) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Slippage Sentinel"))
	b.WriteString("\n\n")
	b.WriteString(row("Endpoint", r.Endpoint))
	if r.Payer != "" {
		b.WriteString(row("Wallet", r.Payer))
	}
	if r.PayerBalance != "" {
		b.WriteString(row("USDC balance", r.PayerBalance))
	}
	b.WriteString(row("Status", statusText(r.Status)))
	if r.Attempts > 1 {
		b.WriteString(row("Attempts", fmt.Sprint(r.Attempts)))
	}

	if r.Payment != nil {
		b.WriteString("\n" + HeaderStyle.Render("Payment") + "\n")
		b.WriteString(row("Result", SuccessStyle.Render("settled")))
		b.WriteString(row("Transaction", r.Payment.Transaction))
		b.WriteString(row("Network", r.Payment.Network))
		b.WriteString(row("Payer", r.Payment.Payer))
	}
	if r.PaymentError != "" {
		b.WriteString("\n" + ErrorStyle.Render("Payment error: ") + r.PaymentError + "\n")
	}

	if r.Body != "" {
		b.WriteString("\n" + HeaderStyle.Render("Response") + "\n")
		b.WriteString(MutedValue.Render(r.Body) + "\n")
	}

	if rec := r.Recommendation; rec != nil {
		lines := lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render("Slippage Recommendation"),
			row("Safe slippage", SuccessStyle.Render(fmt.Sprintf("%s%% (%d bps)", BpsToPercent(rec.Bps), rec.Bps))),
			row("Pool depth", "$"+decimal.NewFromFloat(rec.PoolDepth).StringFixed(2)),
			row("Trade size p95", "$"+decimal.NewFromFloat(rec.TradeP95).StringFixed(2)),
			row("Volatility", decimal.NewFromFloat(rec.Volatility).StringFixed(2)+"%"),
		)
		b.WriteString("\n" + BoxStyle.Render(strings.TrimRight(lines, "\n")) + "\n")
	}
	if r.OutputError != "" {
		b.WriteString("\n" + WarningStyle.Render("Estimate failed: ") + r.OutputError + "\n")
	}

	b.WriteString("\n" + verdict(r.Status) + "\n")
	return b.String()
}

// BpsToPercent renders basis points as a percentage with two decimals.
func BpsToPercent(bps int64) string {
	return decimal.New(bps, -2).StringFixed(2)
}

func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value) + "\n"
}

func statusText(status int) string {
	text := fmt.Sprintf("%d %s", status, http.StatusText(status))
	switch {
	case status >= 200 && status < 300:
		return SuccessStyle.Render(text)
	case status == http.StatusPaymentRequired:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

func verdict(status int) string {
	switch {
	case status >= 200 && status < 300:
		return SuccessStyle.Render("Call completed.")
	case status == http.StatusPaymentRequired:
		return WarningStyle.Render("Payment required but not completed.") + "\n" +
			MutedValue.Render("Check that PRIVATE_KEY is set and the wallet holds enough USDC on the payment network.")
	default:
		return ErrorStyle.Render(fmt.Sprintf("Unexpected status: %d", status))
	}
}

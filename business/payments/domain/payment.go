// Package domain contains the x402 payment types exchanged with clients and the facilitator.
package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// X402Version is the protocol version spoken by this service.
const X402Version = 1

// SchemeExact pays a fixed amount with a signed EIP-3009 transfer authorization.
const SchemeExact = "exact"

// Header names.
const (
	HeaderPayment         = "X-PAYMENT"
	HeaderPaymentResponse = "X-PAYMENT-RESPONSE"
	HeaderPaymentError    = "X-PAYMENT-ERROR"
)

// Requirements describes what a client must pay to call a resource.
type Requirements struct {
	Scheme            string            `json:"scheme"`
	Network           string            `json:"network"`
	MaxAmountRequired string            `json:"maxAmountRequired"` // token base units
	Resource          string            `json:"resource"`
	Description       string            `json:"description"`
	MimeType          string            `json:"mimeType"`
	PayTo             string            `json:"payTo"`
	MaxTimeoutSeconds int               `json:"maxTimeoutSeconds"`
	Asset             string            `json:"asset"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// PaymentRequiredResponse is the 402 body.
type PaymentRequiredResponse struct {
	X402Version int            `json:"x402Version"`
	Error       string         `json:"error"`
	Accepts     []Requirements `json:"accepts"`
}

// Authorization is an EIP-3009 transferWithAuthorization message. Numbers are decimal strings.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"` // 0x-prefixed 32 bytes
}

// ExactPayload is the scheme-specific part of a payment.
type ExactPayload struct {
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

// Payload is the decoded X-PAYMENT header.
type Payload struct {
	X402Version int          `json:"x402Version"`
	Scheme      string       `json:"scheme"`
	Network     string       `json:"network"`
	Payload     ExactPayload `json:"payload"`
}

// DecodePayload parses a base64 JSON X-PAYMENT header.
func DecodePayload(header string) (Payload, error) {
	var p Payload
	if err := decodeBase64JSON(header, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payment header: %w", err)
	}
	if p.Scheme == "" || p.Network == "" {
		return Payload{}, fmt.Errorf("decode payment header: scheme and network are required")
	}
	return p, nil
}

// Encode returns the header form of p.
func (p Payload) Encode() (string, error) {
	return encodeBase64JSON(p)
}

// Settlement is the facilitator's settle result, echoed to the client in X-PAYMENT-RESPONSE.
type Settlement struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
	Payer       string `json:"payer"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// Encode returns the header form of s.
func (s Settlement) Encode() (string, error) {
	return encodeBase64JSON(s)
}

// DecodeSettlement parses an X-PAYMENT-RESPONSE header.
func DecodeSettlement(header string) (Settlement, error) {
	var s Settlement
	if err := decodeBase64JSON(header, &s); err != nil {
		return Settlement{}, fmt.Errorf("decode payment response: %w", err)
	}
	return s, nil
}

// VerifyResult is the facilitator's verdict on a payload.
type VerifyResult struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

func encodeBase64JSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func decodeBase64JSON(s string, v any) error {
	s = strings.TrimSpace(s)
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some clients send unpadded or URL-safe base64
		if raw, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "=")); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, v)
}

package evm

import (
	"strconv"
	"testing"
	"time"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
)

// well-known hardhat account #0
const (
	testKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testRequirements() domain.Requirements {
	return domain.Requirements{
		Scheme:            domain.SchemeExact,
		Network:           "base",
		MaxAmountRequired: "20000",
		PayTo:             "0x1111111111111111111111111111111111111111",
		MaxTimeoutSeconds: 60,
		Asset:             "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	}
}

func TestSigner_Address(t *testing.T) {
	s, err := NewSigner(testKey)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	if s.Address().Hex() != testAddress {
		t.Errorf("address = %s, want %s", s.Address().Hex(), testAddress)
	}
}

func TestSigner_PayRecoversPayer(t *testing.T) {
	s, err := NewSigner(testKey)
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	p, err := s.Pay(testRequirements())
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if p.Scheme != domain.SchemeExact || p.Network != "base" || p.X402Version != 1 {
		t.Errorf("unexpected envelope %+v", p)
	}
	auth := p.Payload.Authorization
	if auth.Value != "20000" || auth.From != testAddress {
		t.Errorf("unexpected authorization %+v", auth)
	}
	if auth.ValidBefore != strconv.FormatInt(1_700_000_060, 10) {
		t.Errorf("validBefore = %s", auth.ValidBefore)
	}
	if len(auth.Nonce) != 66 {
		t.Errorf("nonce %q is not 32 bytes", auth.Nonce)
	}

	payer, err := RecoverPayer(p)
	if err != nil {
		t.Fatalf("RecoverPayer: %v", err)
	}
	if payer.Hex() != testAddress {
		t.Errorf("recovered %s, want %s", payer.Hex(), testAddress)
	}

	// tampering with the amount changes the digest
	p.Payload.Authorization.Value = "1"
	if payer, _ := RecoverPayer(p); payer.Hex() == testAddress {
		t.Error("tampered authorization still recovers the payer")
	}
}

func TestSigner_Rejects(t *testing.T) {
	if _, err := NewSigner("not-a-key"); err == nil {
		t.Error("expected error for bad key")
	}

	s, err := NewSigner(testKey)
	if err != nil {
		t.Fatal(err)
	}
	req := testRequirements()
	req.Network = "solana"
	if _, err := s.Pay(req); err == nil {
		t.Error("expected error for unsupported network")
	}
}

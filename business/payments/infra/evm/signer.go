// Package evm signs x402 exact-scheme payments (EIP-3009 transferWithAuthorization over EIP-712).
package evm

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
)

const primaryType = "TransferWithAuthorization"

var typedDataTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	primaryType: {
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// Signer produces X-PAYMENT payloads from a private key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	now     func() time.Time
}

// NewSigner parses a hex private key, with or without 0x.
func NewSigner(privateKeyHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		now:     time.Now,
	}, nil
}

// Address returns the payer address.
func (s *Signer) Address() common.Address {
	return s.address
}

// Pay signs an authorization for exactly req.MaxAmountRequired to req.PayTo.
func (s *Signer) Pay(req domain.Requirements) (domain.Payload, error) {
	network, err := domain.LookupNetwork(req.Network)
	if err != nil {
		return domain.Payload{}, err
	}

	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return domain.Payload{}, fmt.Errorf("generate nonce: %w", err)
	}

	now := s.now().Unix()
	timeout := int64(req.MaxTimeoutSeconds)
	if timeout <= 0 {
		timeout = 60
	}

	auth := domain.Authorization{
		From:        s.address.Hex(),
		To:          common.HexToAddress(req.PayTo).Hex(),
		Value:       req.MaxAmountRequired,
		ValidAfter:  fmt.Sprint(now - 600),
		ValidBefore: fmt.Sprint(now + timeout),
		Nonce:       hexutil.Encode(nonce[:]),
	}

	asset := req.Asset
	if asset == "" {
		asset = network.USDC
	}
	hash, err := AuthorizationHash(auth, network, asset)
	if err != nil {
		return domain.Payload{}, err
	}

	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return domain.Payload{}, fmt.Errorf("sign authorization: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return domain.Payload{
		X402Version: domain.X402Version,
		Scheme:      domain.SchemeExact,
		Network:     network.Name,
		Payload: domain.ExactPayload{
			Signature:     hexutil.Encode(sig),
			Authorization: auth,
		},
	}, nil
}

// AuthorizationHash is the EIP-712 digest the token contract checks.
func AuthorizationHash(auth domain.Authorization, network domain.Network, asset string) ([]byte, error) {
	if _, ok := new(big.Int).SetString(auth.Value, 10); !ok {
		return nil, fmt.Errorf("invalid authorization value %q", auth.Value)
	}

	typed := apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              network.TokenName,
			Version:           network.TokenVersion,
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(network.ChainID)),
			VerifyingContract: common.HexToAddress(asset).Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":        auth.From,
			"to":          auth.To,
			"value":       auth.Value,
			"validAfter":  auth.ValidAfter,
			"validBefore": auth.ValidBefore,
			"nonce":       auth.Nonce,
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, fmt.Errorf("hash typed data: %w", err)
	}
	return hash, nil
}

// RecoverPayer returns the address that signed p.
func RecoverPayer(p domain.Payload) (common.Address, error) {
	network, err := domain.LookupNetwork(p.Network)
	if err != nil {
		return common.Address{}, err
	}
	hash, err := AuthorizationHash(p.Payload.Authorization, network, network.USDC)
	if err != nil {
		return common.Address{}, err
	}
	sig, err := hexutil.Decode(p.Payload.Signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature")
	}
	sig = append([]byte(nil), sig...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

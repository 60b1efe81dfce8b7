package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
)

// erc20ABI only includes balanceOf.
const erc20ABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ContractCaller executes read-only contract calls. *ethclient.Client implements it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BalanceChecker reads USDC balances so a payer can tell whether a payment can settle.
type BalanceChecker struct {
	caller ContractCaller
	erc20  abi.ABI
}

// NewBalanceChecker wraps caller.
func NewBalanceChecker(caller ContractCaller) (*BalanceChecker, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}
	return &BalanceChecker{caller: caller, erc20: parsed}, nil
}

// DialBalanceChecker connects to an RPC endpoint.
func DialBalanceChecker(ctx context.Context, rpcURL string) (*BalanceChecker, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}
	checker, err := NewBalanceChecker(client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return checker, client.Close, nil
}

// USDCBalance returns owner's USDC balance on network in whole tokens.
func (b *BalanceChecker) USDCBalance(ctx context.Context, network domain.Network, owner common.Address) (decimal.Decimal, error) {
	callData, err := b.erc20.Pack("balanceOf", owner)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to encode call: %w", err)
	}

	token := common.HexToAddress(network.USDC)
	result, err := b.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balanceOf call failed on %s: %w", network.Name, err)
	}

	outputs, err := b.erc20.Unpack("balanceOf", result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) != 1 {
		return decimal.Zero, fmt.Errorf("unexpected output length: %d", len(outputs))
	}
	raw, ok := outputs[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected output type %T", outputs[0])
	}

	return decimal.NewFromBigInt(raw, -domain.USDCDecimals), nil
}

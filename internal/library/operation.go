package bot

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/instructions"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	OP_BUY   = "buy"
	OP_SELL  = "sell"
	OP_BURN  = "burn"
	OP_CLOSE = "close"
)

// OperationInput is the raw form of an operation as entered by the user.
// Empty optional fields mean "not set".
type OperationInput struct {
	Mint             string `json:"mint"`
	Amount           string `json:"amount"`
	ComputeUnitLimit string `json:"computeUnitLimit"`
	ComputeUnitPrice string `json:"computeUnitPrice"`
	MinAmountOut     string `json:"minAmountOut"`
}

// Operation is one of Buy, Sell, Burn or Close.
type Operation interface {
	Name() string
	TokenMint() solana.PublicKey
	isOperation()
}

// Buy spends Amount SOL on the token.
type Buy struct {
	Mint         solana.PublicKey
	Amount       decimal.Decimal
	MinAmountOut uint64
	Compute      instructions.ComputeUnit
}

// Sell swaps Amount tokens back to WSOL.
type Sell struct {
	Mint         solana.PublicKey
	Amount       decimal.Decimal
	MinAmountOut uint64
	Compute      instructions.ComputeUnit
}

type Burn struct {
	Mint    solana.PublicKey
	Amount  decimal.Decimal
	Compute instructions.ComputeUnit
}

type Close struct {
	Mint    solana.PublicKey
	Compute instructions.ComputeUnit
}

func (Buy) Name() string   { return OP_BUY }
func (Sell) Name() string  { return OP_SELL }
func (Burn) Name() string  { return OP_BURN }
func (Close) Name() string { return OP_CLOSE }

func (o Buy) TokenMint() solana.PublicKey   { return o.Mint }
func (o Sell) TokenMint() solana.PublicKey  { return o.Mint }
func (o Burn) TokenMint() solana.PublicKey  { return o.Mint }
func (o Close) TokenMint() solana.PublicKey { return o.Mint }

func (Buy) isOperation()   {}
func (Sell) isOperation()  {}
func (Burn) isOperation()  {}
func (Close) isOperation() {}

// ParseOperation validates input for the named operation. Buy, sell and burn
// require a positive amount; close takes none. WSOL cannot be bought or sold,
// it is the other side of every swap.
func ParseOperation(name string, input OperationInput) (Operation, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case OP_BUY, OP_SELL, OP_BURN, OP_CLOSE:
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownOperation, name)
	}

	mint, err := ParseMint(input.Mint)
	if err != nil {
		return nil, err
	}

	compute, err := parseCompute(input)
	if err != nil {
		return nil, err
	}

	if name == OP_CLOSE {
		return Close{Mint: mint, Compute: compute}, nil
	}

	amount, err := utils.ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	if name == OP_BURN {
		return Burn{Mint: mint, Amount: amount, Compute: compute}, nil
	}

	if err := checkTradable(mint); err != nil {
		return nil, err
	}

	minAmountOut, err := utils.ParseOptionalUint(input.MinAmountOut, 64)
	if err != nil {
		return nil, fmt.Errorf("min amount out: %w", err)
	}

	if name == OP_BUY {
		return Buy{Mint: mint, Amount: amount, MinAmountOut: minAmountOut, Compute: compute}, nil
	}

	return Sell{Mint: mint, Amount: amount, MinAmountOut: minAmountOut, Compute: compute}, nil
}

func ParseMint(value string) (solana.PublicKey, error) {
	value = strings.TrimSpace(value)
	if !utils.IsValidAddress(value) {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", types.ErrInvalidAddress, value)
	}

	return solana.PublicKeyFromBase58(value)
}

func parseCompute(input OperationInput) (instructions.ComputeUnit, error) {
	units, err := utils.ParseOptionalUint(input.ComputeUnitLimit, 32)
	if err != nil {
		return instructions.ComputeUnit{}, fmt.Errorf("compute unit limit: %w", err)
	}

	price, err := utils.ParseOptionalUint(input.ComputeUnitPrice, 64)
	if err != nil {
		return instructions.ComputeUnit{}, fmt.Errorf("compute unit price: %w", err)
	}

	return instructions.ComputeUnit{Units: uint32(units), MicroLamports: price}, nil
}

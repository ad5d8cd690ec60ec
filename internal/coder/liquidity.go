package coder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
)

const (
	LIQUIDITY_STATE_V4_SIZE     = 752
	LIQUIDITY_BASE_MINT_OFFSET  = 400
	LIQUIDITY_QUOTE_MINT_OFFSET = 432
)

// LiquidityStateV4 mirrors the Raydium AMM v4 account. Field order and sizes
// are the on-chain layout, do not reorder.
type LiquidityStateV4 struct {
	Status                 uint64
	Nonce                  uint64
	MaxOrder               uint64
	Depth                  uint64
	BaseDecimal            uint64
	QuoteDecimal           uint64
	State                  uint64
	ResetFlag              uint64
	MinSize                uint64
	VolMaxCutRatio         uint64
	AmountWaveRatio        uint64
	BaseLotSize            uint64
	QuoteLotSize           uint64
	MinPriceMultiplier     uint64
	MaxPriceMultiplier     uint64
	SystemDecimalValue     uint64
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
	BaseNeedTakePnl        uint64
	QuoteNeedTakePnl       uint64
	QuoteTotalPnl          uint64
	BaseTotalPnl           uint64
	PoolOpenTime           uint64
	PunishPcAmount         uint64
	PunishCoinAmount       uint64
	OrderbookToInitTime    uint64
	SwapBaseInAmount       [16]byte
	SwapQuoteOutAmount     [16]byte
	SwapBase2QuoteFee      uint64
	SwapQuoteInAmount      [16]byte
	SwapBaseOutAmount      [16]byte
	SwapQuote2BaseFee      uint64
	BaseVault              solana.PublicKey
	QuoteVault             solana.PublicKey
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	LpMint                 solana.PublicKey
	OpenOrders             solana.PublicKey
	MarketId               solana.PublicKey
	MarketProgramId        solana.PublicKey
	TargetOrders           solana.PublicKey
	WithdrawQueue          solana.PublicKey
	LpVault                solana.PublicKey
	Owner                  solana.PublicKey
	LpReserve              uint64
	Padding                [3]uint64
}

type RaydiumLiquidityCoder struct{}

func NewRaydiumLiquidityCoder() *RaydiumLiquidityCoder {
	return &RaydiumLiquidityCoder{}
}

// Decode decodes raw AMM account data. Any length other than the fixed
// layout size is rejected with ErrMalformedAccountData.
func (coder *RaydiumLiquidityCoder) Decode(data []byte) (LiquidityStateV4, error) {
	return decodeRaydiumLiquidityData(data)
}

func decodeRaydiumLiquidityData(data []byte) (LiquidityStateV4, error) {
	var state LiquidityStateV4

	if len(data) != LIQUIDITY_STATE_V4_SIZE {
		return state, fmt.Errorf("%w: amm state is %d bytes, expected %d", types.ErrMalformedAccountData, len(data), LIQUIDITY_STATE_V4_SIZE)
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &state); err != nil {
		return LiquidityStateV4{}, fmt.Errorf("%w: %v", types.ErrMalformedAccountData, err)
	}

	return state, nil
}

// Encode is the inverse of Decode.
func (coder *RaydiumLiquidityCoder) Encode(state LiquidityStateV4) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, &state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

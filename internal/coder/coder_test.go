package coder

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, LIQUIDITY_STATE_V4_SIZE, binary.Size(LiquidityStateV4{}))
	assert.Equal(t, MARKET_STATE_V3_SIZE, binary.Size(MarketStateLayoutV3{}))
}

func TestDecodeLiquidityState(t *testing.T) {
	baseMint := solana.NewWallet().PublicKey()
	quoteMint := solana.NewWallet().PublicKey()
	marketId := solana.NewWallet().PublicKey()

	c := NewRaydiumLiquidityCoder()
	data, err := c.Encode(LiquidityStateV4{
		BaseDecimal:     6,
		QuoteDecimal:    9,
		PoolOpenTime:    1718000000,
		BaseMint:        baseMint,
		QuoteMint:       quoteMint,
		MarketId:        marketId,
		MarketProgramId: solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"),
	})
	require.NoError(t, err)
	require.Len(t, data, LIQUIDITY_STATE_V4_SIZE)

	// The pool lookup filters rely on these offsets.
	assert.Equal(t, baseMint.Bytes(), data[LIQUIDITY_BASE_MINT_OFFSET:LIQUIDITY_BASE_MINT_OFFSET+32])
	assert.Equal(t, quoteMint.Bytes(), data[LIQUIDITY_QUOTE_MINT_OFFSET:LIQUIDITY_QUOTE_MINT_OFFSET+32])

	state, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), state.BaseDecimal)
	assert.Equal(t, uint64(9), state.QuoteDecimal)
	assert.Equal(t, uint64(1718000000), state.PoolOpenTime)
	assert.Equal(t, marketId, state.MarketId)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := NewRaydiumLiquidityCoder().Decode(make([]byte, LIQUIDITY_STATE_V4_SIZE-1))
	assert.ErrorIs(t, err, types.ErrMalformedAccountData)

	_, err = NewRaydiumLiquidityCoder().Decode(make([]byte, LIQUIDITY_STATE_V4_SIZE+8))
	assert.ErrorIs(t, err, types.ErrMalformedAccountData)

	_, err = NewRaydiumMarketCoder().Decode(make([]byte, 0))
	assert.ErrorIs(t, err, types.ErrMalformedAccountData)
}

func TestDecodeMarketState(t *testing.T) {
	bids := solana.NewWallet().PublicKey()
	eventQueue := solana.NewWallet().PublicKey()

	c := NewRaydiumMarketCoder()
	data, err := c.Encode(MarketStateLayoutV3{VaultSignerNonce: 3, Bids: bids, EventQueue: eventQueue})
	require.NoError(t, err)

	state, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), state.VaultSignerNonce)
	assert.Equal(t, bids, state.Bids)
	assert.Equal(t, eventQueue, state.EventQueue)
}

func TestDecodeInstructions(t *testing.T) {
	c := NewRaydiumAmmInstructionCoder()

	data := make([]byte, 17)
	data[0] = SWAP_BASE_IN_INSTRUCTION
	binary.LittleEndian.PutUint64(data[1:], 1_000)
	binary.LittleEndian.PutUint64(data[9:], 7)

	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, SwapBaseIn{AmountIn: 1_000, MinimumAmountOut: 7}, decoded)

	_, err = c.Decode([]byte{SWAP_BASE_IN_INSTRUCTION, 1})
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	_, err = c.Decode([]byte{42})
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	limit, err := c.DecodeCompute([]byte{COMPUTE_UNIT_LIMIT_INSTRUCTION, 0xa0, 0x86, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, Compute{Instruction: COMPUTE_UNIT_LIMIT_INSTRUCTION, Value: 100_000}, limit)
}

package coder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
)

const MARKET_STATE_V3_SIZE = 388

// MarketStateLayoutV3 mirrors the OpenBook (Serum v3) market account.
type MarketStateLayoutV3 struct {
	Unused1                [5]byte
	Unused2                [8]byte
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	BaseVault              solana.PublicKey
	BaseDepositsTotal      uint64
	BaseFeesAccrued        uint64
	QuoteVault             solana.PublicKey
	QuoteDepositsTotal     uint64
	QuoteFeesAccrued       uint64
	QuoteDustThreshold     uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
	Unused3                [7]byte
}

type RaydiumMarketCoder struct{}

func NewRaydiumMarketCoder() *RaydiumMarketCoder {
	return &RaydiumMarketCoder{}
}

func (coder *RaydiumMarketCoder) Decode(data []byte) (MarketStateLayoutV3, error) {
	return decodeRaydiumMarketData(data)
}

func decodeRaydiumMarketData(data []byte) (MarketStateLayoutV3, error) {
	var state MarketStateLayoutV3

	if len(data) != MARKET_STATE_V3_SIZE {
		return state, fmt.Errorf("%w: market state is %d bytes, expected %d", types.ErrMalformedAccountData, len(data), MARKET_STATE_V3_SIZE)
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &state); err != nil {
		return MarketStateLayoutV3{}, fmt.Errorf("%w: %v", types.ErrMalformedAccountData, err)
	}

	return state, nil
}

func (coder *RaydiumMarketCoder) Encode(state MarketStateLayoutV3) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, &state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

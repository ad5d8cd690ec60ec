package instructions

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/coder"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
)

// SWAP_ACCOUNTS is the number of accounts the AMM expects on a swap.
const SWAP_ACCOUNTS = 18

type RaydiumSwapInstruction struct {
	bin.BaseVariant
	InAmount                uint64
	MinimumOutAmount        uint64
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

type LiquiditySwapFixedInInstructionParams struct {
	InAmount         uint64
	MinimumOutAmount uint64
	PoolKeys         *types.PoolKeys
	TokenAccountIn   solana.PublicKey
	TokenAccountOut  solana.PublicKey
	Owner            solana.PublicKey
}

func (instruction *RaydiumSwapInstruction) ProgramID() solana.PublicKey {
	return config.RAYDIUM_AMM_V4
}

func (instruction *RaydiumSwapInstruction) Accounts() (out []*solana.AccountMeta) {
	return instruction.GetAccounts()
}

func (instruction *RaydiumSwapInstruction) GetAccounts() []*solana.AccountMeta {
	return instruction.AccountMetaSlice
}

func (instruction *RaydiumSwapInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(instruction); err != nil {
		return nil, fmt.Errorf("unable to encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

func (instruction *RaydiumSwapInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	err = encoder.WriteUint8(coder.SWAP_BASE_IN_INSTRUCTION)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(instruction.InAmount, binary.LittleEndian)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(instruction.MinimumOutAmount, binary.LittleEndian)
	if err != nil {
		return err
	}
	return nil
}

// MakeRaydiumSwapFixedInInstruction builds a swap base in instruction. The
// account order is fixed by the AMM program.
func MakeRaydiumSwapFixedInInstruction(params *LiquiditySwapFixedInInstructionParams) (*RaydiumSwapInstruction, error) {
	if err := validateSwapParams(params); err != nil {
		return nil, err
	}

	ins := &RaydiumSwapInstruction{
		InAmount:         params.InAmount,
		MinimumOutAmount: params.MinimumOutAmount,
		AccountMetaSlice: make(solana.AccountMetaSlice, 0, SWAP_ACCOUNTS),
	}

	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.SWAP_BASE_IN_INSTRUCTION),
	}

	pKey := params.PoolKeys

	ins.AccountMetaSlice = append(ins.AccountMetaSlice,
		solana.Meta(solana.TokenProgramID),          // Token program
		solana.Meta(pKey.ID).WRITE(),                // Pool ID
		solana.Meta(pKey.Authority),                 // Pool authority
		solana.Meta(pKey.OpenOrders).WRITE(),        // Open orders
		solana.Meta(pKey.TargetOrders).WRITE(),      // Target orders
		solana.Meta(pKey.BaseVault).WRITE(),         // Base vault
		solana.Meta(pKey.QuoteVault).WRITE(),        // Quote vault
		solana.Meta(pKey.MarketProgramID),           // Market program
		solana.Meta(pKey.MarketID).WRITE(),          // Market
		solana.Meta(pKey.MarketBids).WRITE(),        // Bids
		solana.Meta(pKey.MarketAsks).WRITE(),        // Asks
		solana.Meta(pKey.MarketEventQueue).WRITE(),  // Event queue
		solana.Meta(pKey.MarketBaseVault).WRITE(),   // Market base vault
		solana.Meta(pKey.MarketQuoteVault).WRITE(),  // Market quote vault
		solana.Meta(pKey.MarketAuthority),           // Market vault signer
		solana.Meta(params.TokenAccountIn).WRITE(),  // User source token account
		solana.Meta(params.TokenAccountOut).WRITE(), // User destination token account
		solana.Meta(params.Owner).SIGNER(),          // User owner
	)

	return ins, nil
}

func validateSwapParams(params *LiquiditySwapFixedInInstructionParams) error {
	if params.PoolKeys == nil {
		return fmt.Errorf("%w: missing pool keys", types.ErrIncompletePoolKeys)
	}

	pKey := params.PoolKeys
	required := []struct {
		name string
		key  solana.PublicKey
	}{
		{"id", pKey.ID},
		{"authority", pKey.Authority},
		{"openOrders", pKey.OpenOrders},
		{"targetOrders", pKey.TargetOrders},
		{"baseVault", pKey.BaseVault},
		{"quoteVault", pKey.QuoteVault},
		{"marketProgramId", pKey.MarketProgramID},
		{"marketId", pKey.MarketID},
		{"marketBids", pKey.MarketBids},
		{"marketAsks", pKey.MarketAsks},
		{"marketEventQueue", pKey.MarketEventQueue},
		{"marketBaseVault", pKey.MarketBaseVault},
		{"marketQuoteVault", pKey.MarketQuoteVault},
		{"marketAuthority", pKey.MarketAuthority},
		{"tokenAccountIn", params.TokenAccountIn},
		{"tokenAccountOut", params.TokenAccountOut},
		{"owner", params.Owner},
	}

	for _, r := range required {
		if r.key.IsZero() {
			return fmt.Errorf("%w: %s is not set", types.ErrIncompletePoolKeys, r.name)
		}
	}

	return nil
}

package liquidity

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
)

// GetMint returns the non-WSOL side of the pool and whether it sits in the
// quote slot.
func GetMint(pKey *types.PoolKeys) (solana.PublicKey, bool, error) {
	if pKey.BaseMint.Equals(config.WRAPPED_SOL) {
		return pKey.QuoteMint, true, nil
	}

	if pKey.QuoteMint.Equals(config.WRAPPED_SOL) {
		return pKey.BaseMint, false, nil
	}

	return solana.PublicKey{}, false, errors.New("neither BaseMint nor QuoteMint is WRAPPED_SOL")
}

// GetPoolSolBalance returns the lamports held by the WSOL vault of the pool.
func GetPoolSolBalance(ctx context.Context, client rpc.Client, pKey *types.PoolKeys) (uint64, error) {
	_, swap, err := GetMint(pKey)
	if err != nil {
		return 0, err
	}

	vault := pKey.QuoteVault
	if swap {
		vault = pKey.BaseVault
	}

	return rpc.GetBalance(ctx, client, vault)
}

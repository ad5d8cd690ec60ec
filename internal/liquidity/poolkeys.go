package liquidity

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/coder"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/storage"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"go.uber.org/zap"
)

// PoolKeysCache stores positive lookup results. Misses are reported with
// storage.ErrKeyNotFound.
type PoolKeysCache interface {
	GetPair(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error)
	SetPair(ctx context.Context, mint solana.PublicKey, pair solana.PublicKey) error
	GetPoolKeys(ctx context.Context, ammId solana.PublicKey) (*types.PoolKeys, error)
	SetPoolKeys(ctx context.Context, pKey *types.PoolKeys) error
}

type Resolver struct {
	client rpc.Client
	cache  PoolKeysCache
	logger *zap.Logger
}

// NewResolver returns a resolver backed by client. cache may be nil.
func NewResolver(client rpc.Client, cache PoolKeysCache, logger *zap.Logger) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache,
		logger: logger.Named("resolver"),
	}
}

// Lookup finds the WSOL pool of mint and resolves its keys, consulting the
// cache first when one is configured.
func (r *Resolver) Lookup(ctx context.Context, mint solana.PublicKey) (*types.PoolKeys, error) {
	pair, err := r.cachedPair(ctx, mint)
	if err != nil {
		pair, err = r.FindPool(ctx, mint)
		if err != nil {
			return nil, err
		}
	}

	if pKey := r.cachedPoolKeys(ctx, pair); pKey != nil {
		return pKey, nil
	}

	pKey, err := r.ResolveKeys(ctx, pair)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetPair(ctx, mint, pair); err != nil {
			r.logger.Warn("failed to cache pair", zap.String("mint", mint.String()), zap.Error(err))
		}
		if err := r.cache.SetPoolKeys(ctx, pKey); err != nil {
			r.logger.Warn("failed to cache pool keys", zap.String("ammId", pair.String()), zap.Error(err))
		}
	}

	return pKey, nil
}

// FindPool returns the AMM account pairing mint with WSOL. The program keeps
// the mints in whichever slot they were created in, so both orderings are
// queried: mint as base first, then mint as quote.
func (r *Resolver) FindPool(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	orderings := [][2]solana.PublicKey{
		{mint, config.WRAPPED_SOL},
		{config.WRAPPED_SOL, mint},
	}

	for _, ordering := range orderings {
		addresses, err := rpc.FindProgramAccounts(ctx, r.client, config.RAYDIUM_AMM_V4, poolFilters(ordering[0], ordering[1]))
		if err != nil {
			return solana.PublicKey{}, err
		}

		if len(addresses) > 0 {
			r.logger.Debug("pool found",
				zap.String("mint", mint.String()),
				zap.String("pair", addresses[0].String()),
				zap.Bool("quoteSlot", ordering[1].Equals(mint)))
			return addresses[0], nil
		}
	}

	return solana.PublicKey{}, fmt.Errorf("%w: %s", types.ErrNoPoolFound, mint)
}

func poolFilters(baseMint solana.PublicKey, quoteMint solana.PublicKey) []solanarpc.RPCFilter {
	return []solanarpc.RPCFilter{
		{DataSize: coder.LIQUIDITY_STATE_V4_SIZE},
		{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: coder.LIQUIDITY_BASE_MINT_OFFSET, Bytes: solana.Base58(baseMint.Bytes())}},
		{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: coder.LIQUIDITY_QUOTE_MINT_OFFSET, Bytes: solana.Base58(quoteMint.Bytes())}},
	}
}

// ResolveKeys fetches the AMM and market accounts of pair and assembles the
// full set of swap accounts.
func (r *Resolver) ResolveKeys(ctx context.Context, pair solana.PublicKey) (*types.PoolKeys, error) {
	state, err := rpc.GetLiquidityState(ctx, r.client, pair)
	if err != nil {
		return nil, err
	}

	if state.BaseDecimal > math.MaxUint8 || state.QuoteDecimal > math.MaxUint8 {
		return nil, fmt.Errorf("%w: amm %s decimals out of range", types.ErrMalformedAccountData, pair)
	}

	authority, err := getAssociatedAuthority(config.RAYDIUM_AMM_V4)
	if err != nil {
		return nil, err
	}

	marketInfo, err := rpc.GetMarketState(ctx, r.client, state.MarketId)
	if err != nil {
		return nil, err
	}

	marketAuthority, err := getMarketAuthority(state.MarketProgramId, state.MarketId, marketInfo.VaultSignerNonce)
	if err != nil {
		return nil, fmt.Errorf("%w: market %s: %v", types.ErrMalformedAccountData, state.MarketId, err)
	}

	return &types.PoolKeys{
		ID:               pair,
		BaseMint:         state.BaseMint,
		QuoteMint:        state.QuoteMint,
		LpMint:           state.LpMint,
		BaseDecimals:     uint8(state.BaseDecimal),
		QuoteDecimals:    uint8(state.QuoteDecimal),
		Version:          4,
		ProgramID:        config.RAYDIUM_AMM_V4,
		Authority:        authority,
		OpenOrders:       state.OpenOrders,
		TargetOrders:     state.TargetOrders,
		BaseVault:        state.BaseVault,
		QuoteVault:       state.QuoteVault,
		WithdrawQueue:    state.WithdrawQueue,
		LpVault:          state.LpVault,
		MarketProgramID:  state.MarketProgramId,
		MarketID:         state.MarketId,
		MarketAuthority:  marketAuthority,
		MarketBaseVault:  marketInfo.BaseVault,
		MarketQuoteVault: marketInfo.QuoteVault,
		MarketBids:       marketInfo.Bids,
		MarketAsks:       marketInfo.Asks,
		MarketEventQueue: marketInfo.EventQueue,
		PoolOpenTime:     state.PoolOpenTime,
	}, nil
}

func (r *Resolver) cachedPair(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	if r.cache == nil {
		return solana.PublicKey{}, storage.ErrKeyNotFound
	}

	pair, err := r.cache.GetPair(ctx, mint)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		r.logger.Warn("pair cache unavailable", zap.String("mint", mint.String()), zap.Error(err))
	}
	return pair, err
}

func (r *Resolver) cachedPoolKeys(ctx context.Context, pair solana.PublicKey) *types.PoolKeys {
	if r.cache == nil {
		return nil
	}

	pKey, err := r.cache.GetPoolKeys(ctx, pair)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			r.logger.Warn("pool keys cache unavailable", zap.String("ammId", pair.String()), zap.Error(err))
		}
		return nil
	}

	return pKey
}

func getAssociatedAuthority(programId solana.PublicKey) (solana.PublicKey, error) {
	seed := []byte("amm authority")
	programAddress, _, err := solana.FindProgramAddress([][]byte{seed}, programId)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return programAddress, nil
}

// getMarketAuthority derives the vault signer of an OpenBook market. The
// nonce seed is the little endian u64, i.e. one byte plus seven zero bytes.
func getMarketAuthority(marketProgramId solana.PublicKey, marketId solana.PublicKey, nonce uint64) (solana.PublicKey, error) {
	nonceSeed := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonceSeed, nonce)

	return solana.CreateProgramAddress([][]byte{marketId.Bytes(), nonceSeed}, marketProgramId)
}

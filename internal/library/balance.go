package bot

import (
	"context"
	"sort"
	"strings"

	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/liquidity"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
	"go.uber.org/zap"
)

type WalletInfo struct {
	ID        string `json:"id"`
	PublicKey string `json:"publicKey"`
}

type Balance struct {
	Wallet  string `json:"wallet"`
	Mint    string `json:"mint"`
	Account string `json:"account,omitempty"`
	Balance string `json:"balance"`
	Exists  bool   `json:"exists"`
}

// Holdings is the SOL balance of a wallet followed by every token account it
// owns, ordered by mint.
type Holdings struct {
	Wallet    string                    `json:"wallet"`
	PublicKey string                    `json:"publicKey"`
	Sol       string                    `json:"sol"`
	Tokens    []*types.TokenAccountInfo `json:"tokens"`
}

// LookupResult is what the user sees after selecting a token: the pool, the
// wallet's token balance and the SOL liquidity of the pool.
type LookupResult struct {
	Wallet      string          `json:"wallet"`
	Mint        string          `json:"mint"`
	PoolKeys    *types.PoolKeys `json:"poolKeys"`
	Balance     string          `json:"balance"`
	PoolSol     string          `json:"poolSol"`
	Decimals    uint8           `json:"decimals"`
	HasAccount  bool            `json:"hasAccount"`
	ExplorerUrl string          `json:"explorerUrl"`
}

func (t *Trader) Wallets() []WalletInfo {
	wallets := make([]WalletInfo, 0, len(t.sessions))
	for id, session := range t.sessions {
		wallets = append(wallets, WalletInfo{ID: id, PublicKey: session.Wallet.PublicKey.String()})
	}

	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets
}

// Balance returns the SOL balance of the wallet when mint is empty, otherwise
// the balance of its token account for mint.
func (t *Trader) Balance(ctx context.Context, walletID string, mint string) (*Balance, error) {
	session, err := t.session(walletID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(mint) == "" {
		lamports, err := rpc.GetBalance(ctx, t.client, session.Wallet.PublicKey)
		if err != nil {
			return nil, err
		}

		return &Balance{
			Wallet:  walletID,
			Mint:    config.WRAPPED_SOL.String(),
			Account: session.Wallet.PublicKey.String(),
			Balance: utils.FormatAmount(lamports, SOL_DECIMALS),
			Exists:  true,
		}, nil
	}

	mintKey, err := ParseMint(mint)
	if err != nil {
		return nil, err
	}

	_, decimals, err := t.decimals(ctx, session, mintKey)
	if err != nil {
		return nil, err
	}

	info, err := rpc.GetTokenAccountInfo(ctx, t.client, session.Wallet.PublicKey, mintKey, decimals)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Wallet:  walletID,
		Mint:    mintKey.String(),
		Account: info.Address.String(),
		Balance: info.Balance,
		Exists:  info.Exists,
	}, nil
}

func (t *Trader) Holdings(ctx context.Context, walletID string) (*Holdings, error) {
	session, err := t.session(walletID)
	if err != nil {
		return nil, err
	}

	lamports, err := rpc.GetBalance(ctx, t.client, session.Wallet.PublicKey)
	if err != nil {
		return nil, err
	}

	tokens, err := rpc.GetTokenAccountsByOwner(ctx, t.client, session.Wallet.PublicKey)
	if err != nil {
		return nil, err
	}

	sort.Slice(tokens, func(i, j int) bool {
		if !tokens[i].Mint.Equals(tokens[j].Mint) {
			return tokens[i].Mint.String() < tokens[j].Mint.String()
		}
		return tokens[i].Address.String() < tokens[j].Address.String()
	})

	return &Holdings{
		Wallet:    walletID,
		PublicKey: session.Wallet.PublicKey.String(),
		Sol:       utils.FormatAmount(lamports, SOL_DECIMALS),
		Tokens:    tokens,
	}, nil
}

// Lookup resolves the pool of mint and makes it the wallet's current token.
func (t *Trader) Lookup(ctx context.Context, walletID string, mint string) (*LookupResult, error) {
	session, err := t.session(walletID)
	if err != nil {
		return nil, err
	}

	mintKey, err := ParseMint(mint)
	if err != nil {
		return nil, err
	}

	if err := checkTradable(mintKey); err != nil {
		return nil, err
	}

	logger := t.logger.With(zap.String("wallet", walletID), zap.String("mint", mintKey.String()))

	pKey, err := t.resolver.Lookup(ctx, mintKey)
	if err != nil {
		logger.Warn("pool lookup failed", zap.Error(err))
		return nil, err
	}

	if !poolTrades(pKey, mintKey) {
		return nil, types.ErrNoPoolKeys
	}
	decimals, _ := pKey.DecimalsFor(mintKey)

	session.SetPoolKeys(pKey)

	info, err := rpc.GetTokenAccountInfo(ctx, t.client, session.Wallet.PublicKey, mintKey, decimals)
	if err != nil {
		return nil, err
	}

	poolSol, err := liquidity.GetPoolSolBalance(ctx, t.client, pKey)
	if err != nil {
		return nil, err
	}

	logger.Info("pool selected", zap.String("ammId", pKey.ID.String()), zap.String("balance", info.Balance))

	return &LookupResult{
		Wallet:      walletID,
		Mint:        mintKey.String(),
		PoolKeys:    pKey,
		Balance:     info.Balance,
		PoolSol:     utils.FormatAmount(poolSol, SOL_DECIMALS),
		Decimals:    decimals,
		HasAccount:  info.Exists,
		ExplorerUrl: config.EXPLORER_ACCOUNT_URL + pKey.ID.String(),
	}, nil
}

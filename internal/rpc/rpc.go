package rpc

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/coder"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
)

// Client is the subset of the solana-go RPC client used by the swap desk.
// *rpc.Client satisfies it; tests use an in-memory fake.
type Client interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

func NewClient(url string) *rpc.Client {
	return rpc.New(url)
}

func unavailable(method string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrRPCUnavailable, method, err)
}

// GetAccountData returns the raw data of an account, or rpc.ErrNotFound when
// the account does not exist.
func GetAccountData(ctx context.Context, client Client, account solana.PublicKey, commitment rpc.CommitmentType) ([]byte, error) {
	resp, err := client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, rpc.ErrNotFound
		}
		return nil, unavailable("getAccountInfo", err)
	}

	if resp == nil || resp.Value == nil || resp.Value.Data == nil {
		return nil, rpc.ErrNotFound
	}

	return resp.Value.Data.GetBinary(), nil
}

// FindProgramAccounts returns the addresses of program accounts matching
// the given filters.
func FindProgramAccounts(ctx context.Context, client Client, programId solana.PublicKey, filters []rpc.RPCFilter) ([]solana.PublicKey, error) {
	resp, err := client.GetProgramAccountsWithOpts(ctx, programId, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
		// Only the address is needed, skip the account payload.
		DataSlice: &rpc.DataSlice{Offset: uint64Ptr(0), Length: uint64Ptr(0)},
		Filters:   filters,
	})
	if err != nil {
		return nil, unavailable("getProgramAccounts", err)
	}

	addresses := make([]solana.PublicKey, 0, len(resp))
	for _, account := range resp {
		if account == nil {
			continue
		}
		addresses = append(addresses, account.Pubkey)
	}

	return addresses, nil
}

// Liquidity State

func GetLiquidityState(ctx context.Context, client Client, ammId solana.PublicKey) (*coder.LiquidityStateV4, error) {
	data, err := GetAccountData(ctx, client, ammId, rpc.CommitmentConfirmed)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: amm account %s not found", types.ErrNoPoolFound, ammId)
		}
		return nil, err
	}

	state, err := coder.NewRaydiumLiquidityCoder().Decode(data)
	if err != nil {
		return nil, fmt.Errorf("amm %s: %w", ammId, err)
	}

	return &state, nil
}

func GetMarketState(ctx context.Context, client Client, marketId solana.PublicKey) (*coder.MarketStateLayoutV3, error) {
	data, err := GetAccountData(ctx, client, marketId, rpc.CommitmentConfirmed)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: market account %s not found", types.ErrNoPoolFound, marketId)
		}
		return nil, err
	}

	state, err := coder.NewRaydiumMarketCoder().Decode(data)
	if err != nil {
		return nil, fmt.Errorf("market %s: %w", marketId, err)
	}

	return &state, nil
}

// Token accounts

// GetMintDecimals reads the decimals straight from the mint account.
func GetMintDecimals(ctx context.Context, client Client, mint solana.PublicKey) (uint8, error) {
	data, err := GetAccountData(ctx, client, mint, rpc.CommitmentProcessed)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, fmt.Errorf("%w: mint %s not found", types.ErrMalformedAccountData, mint)
		}
		return 0, err
	}

	var m token.Mint
	if err := m.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return 0, fmt.Errorf("%w: mint %s: %v", types.ErrMalformedAccountData, mint, err)
	}

	return m.Decimals, nil
}

// GetTokenAccountInfo finds the token account of owner for mint. Accounts
// other than the associated one are found too; the associated account wins
// when the owner has several. When there is none the associated address is
// reported with Exists=false and a zero balance.
func GetTokenAccountInfo(ctx context.Context, client Client, owner solana.PublicKey, mint solana.PublicKey, decimals uint8) (*types.TokenAccountInfo, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}

	accounts, err := getTokenAccounts(ctx, client, owner, &rpc.GetTokenAccountsConfig{Mint: &mint})
	if err != nil {
		return nil, err
	}

	info := emptyTokenAccount(ata, owner, mint, decimals)

	for _, account := range accounts {
		if !account.mint.Equals(mint) {
			continue
		}
		if info.Exists && !account.address.Equals(ata) {
			continue
		}
		info.Address = account.address
		info.Exists = true
		info.Amount = account.amount
		info.Balance = utils.FormatAmount(account.amount, decimals)
	}

	return info, nil
}

// GetAssociatedTokenAccountInfo reads the associated token account of
// (owner, mint) only. Instructions that create or pay into the associated
// account check it with this.
func GetAssociatedTokenAccountInfo(ctx context.Context, client Client, owner solana.PublicKey, mint solana.PublicKey, decimals uint8) (*types.TokenAccountInfo, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}

	info := emptyTokenAccount(ata, owner, mint, decimals)

	data, err := GetAccountData(ctx, client, ata, rpc.CommitmentProcessed)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return info, nil
		}
		return nil, err
	}

	var account token.Account
	if err := account.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("%w: token account %s: %v", types.ErrMalformedAccountData, ata, err)
	}

	info.Exists = true
	info.Amount = account.Amount
	info.Balance = utils.FormatAmount(account.Amount, decimals)

	return info, nil
}

// GetTokenAccountsByOwner lists every SPL token account of owner. Decimals
// are read from each mint once.
func GetTokenAccountsByOwner(ctx context.Context, client Client, owner solana.PublicKey) ([]*types.TokenAccountInfo, error) {
	programId := solana.TokenProgramID
	accounts, err := getTokenAccounts(ctx, client, owner, &rpc.GetTokenAccountsConfig{ProgramId: &programId})
	if err != nil {
		return nil, err
	}

	decimals := make(map[solana.PublicKey]uint8)
	infos := make([]*types.TokenAccountInfo, 0, len(accounts))

	for _, account := range accounts {
		d, ok := decimals[account.mint]
		if !ok {
			d, err = GetMintDecimals(ctx, client, account.mint)
			if err != nil {
				return nil, err
			}
			decimals[account.mint] = d
		}

		infos = append(infos, &types.TokenAccountInfo{
			Address:  account.address,
			Mint:     account.mint,
			Owner:    owner,
			Decimals: d,
			Amount:   account.amount,
			Balance:  utils.FormatAmount(account.amount, d),
			Exists:   true,
		})
	}

	return infos, nil
}

type tokenAccount struct {
	address solana.PublicKey
	mint    solana.PublicKey
	amount  uint64
}

func getTokenAccounts(ctx context.Context, client Client, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig) ([]tokenAccount, error) {
	resp, err := client.GetTokenAccountsByOwner(ctx, owner, conf, &rpc.GetTokenAccountsOpts{
		Commitment: rpc.CommitmentProcessed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, unavailable("getTokenAccountsByOwner", err)
	}

	if resp == nil {
		return nil, nil
	}

	accounts := make([]tokenAccount, 0, len(resp.Value))
	for _, keyed := range resp.Value {
		if keyed == nil || keyed.Account.Data == nil {
			continue
		}

		var account token.Account
		if err := account.UnmarshalWithDecoder(bin.NewBinDecoder(keyed.Account.Data.GetBinary())); err != nil {
			return nil, fmt.Errorf("%w: token account %s: %v", types.ErrMalformedAccountData, keyed.Pubkey, err)
		}

		accounts = append(accounts, tokenAccount{address: keyed.Pubkey, mint: account.Mint, amount: account.Amount})
	}

	return accounts, nil
}

func emptyTokenAccount(address solana.PublicKey, owner solana.PublicKey, mint solana.PublicKey, decimals uint8) *types.TokenAccountInfo {
	return &types.TokenAccountInfo{
		Address:  address,
		Mint:     mint,
		Owner:    owner,
		Decimals: decimals,
		Balance:  utils.FormatAmount(0, decimals),
	}
}

func GetRentExemption(ctx context.Context, client Client, size uint64) (uint64, error) {
	lamports, err := client.GetMinimumBalanceForRentExemption(ctx, size, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, unavailable("getMinimumBalanceForRentExemption", err)
	}
	return lamports, nil
}

func GetBalance(ctx context.Context, client Client, publicKey solana.PublicKey) (uint64, error) {
	balance, err := client.GetBalance(ctx, publicKey, rpc.CommitmentProcessed)
	if err != nil {
		return 0, unavailable("getBalance", err)
	}

	return balance.Value, nil
}

func GetLatestBlockhash(ctx context.Context, client Client) (solana.Hash, error) {
	resp, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, unavailable("getLatestBlockhash", err)
	}

	if resp == nil || resp.Value == nil {
		return solana.Hash{}, unavailable("getLatestBlockhash", errors.New("empty response"))
	}

	return resp.Value.Blockhash, nil
}

func uint64Ptr(val uint64) *uint64 {
	return &val
}

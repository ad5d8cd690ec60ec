// Package rpctest provides an in-memory stand-in for the Solana RPC client.
package rpctest

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client is a scripted fake of rpc.Client. Accounts and program accounts are
// served from maps; errors can be forced per method name.
type Client struct {
	mu sync.Mutex

	Accounts        map[solana.PublicKey][]byte
	ProgramAccounts map[solana.PublicKey][]byte
	Balances        map[solana.PublicKey]uint64
	Rent            uint64
	Blockhash       solana.Hash

	// TransactionFunc answers getTransaction. poll starts at 1. When nil the
	// transaction is reported as landed without error.
	TransactionFunc func(poll int, sig solana.Signature) (*rpc.GetTransactionResult, error)

	// Errors forces the named method to fail, e.g. "getAccountInfo".
	Errors map[string]error

	// SendErrors are returned by consecutive sendTransaction calls before
	// sends start succeeding.
	SendErrors []error

	Sent  []*solana.Transaction
	Calls map[string]int
}

func NewClient() *Client {
	return &Client{
		Accounts:        make(map[solana.PublicKey][]byte),
		ProgramAccounts: make(map[solana.PublicKey][]byte),
		Balances:        make(map[solana.PublicKey]uint64),
		Rent:            2039280,
		Blockhash:       solana.HashFromBytes(bytes.Repeat([]byte{7}, 32)),
		Errors:          make(map[string]error),
		Calls:           make(map[string]int),
	}
}

func (c *Client) SetAccount(address solana.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[address] = data
}

func (c *Client) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

func (c *Client) SentTransactions() []*solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*solana.Transaction(nil), c.Sent...)
}

func (c *Client) call(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[method]++
	return c.Errors[method]
}

func (c *Client) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if err := c.call("getAccountInfo"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	data, ok := c.Accounts[account]
	c.mu.Unlock()
	if !ok {
		return nil, rpc.ErrNotFound
	}

	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)},
	}, nil
}

func (c *Client) GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	if err := c.call("getProgramAccounts"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := rpc.GetProgramAccountsResult{}
	for address, data := range c.ProgramAccounts {
		if opts != nil && !matches(data, opts.Filters) {
			continue
		}
		out = append(out, &rpc.KeyedAccount{
			Pubkey:  address,
			Account: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(nil)},
		})
	}

	return out, nil
}

func matches(data []byte, filters []rpc.RPCFilter) bool {
	for _, filter := range filters {
		if filter.DataSize != 0 && uint64(len(data)) != filter.DataSize {
			return false
		}

		if filter.Memcmp != nil {
			offset := int(filter.Memcmp.Offset)
			want := []byte(filter.Memcmp.Bytes)
			if offset+len(want) > len(data) || !bytes.Equal(data[offset:offset+len(want)], want) {
				return false
			}
		}
	}
	return true
}

func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error) {
	if err := c.call("getMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}
	return c.Rent, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if err := c.call("getLatestBlockhash"); err != nil {
		return nil, err
	}

	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: c.Blockhash, LastValidBlockHeight: 100},
	}, nil
}

func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if err := c.call("getBalance"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return &rpc.GetBalanceResult{Value: c.Balances[account]}, nil
}

// GetTokenAccountsByOwner serves every 165 byte account whose owner field is
// owner, narrowed to conf.Mint when set.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	if err := c.call("getTokenAccountsByOwner"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := &rpc.GetTokenAccountsResult{}
	for address, data := range c.Accounts {
		if len(data) != tokenAccountSize || !bytes.Equal(data[32:64], owner[:]) {
			continue
		}
		if conf != nil && conf.Mint != nil && !bytes.Equal(data[0:32], conf.Mint[:]) {
			continue
		}
		out.Value = append(out.Value, &rpc.TokenAccount{
			Pubkey:  address,
			Account: rpc.Account{Owner: solana.TokenProgramID, Data: rpc.DataBytesOrJSONFromBytes(data)},
		})
	}

	sort.Slice(out.Value, func(i, j int) bool {
		return bytes.Compare(out.Value[i].Pubkey[:], out.Value[j].Pubkey[:]) < 0
	})

	return out, nil
}

func (c *Client) SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	if err := c.call("sendTransaction"); err != nil {
		return solana.Signature{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.SendErrors) > 0 {
		err := c.SendErrors[0]
		c.SendErrors = c.SendErrors[1:]
		return solana.Signature{}, err
	}

	if len(transaction.Signatures) == 0 {
		return solana.Signature{}, errors.New("transaction is not signed")
	}

	c.Sent = append(c.Sent, transaction)
	return transaction.Signatures[0], nil
}

func (c *Client) GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	if err := c.call("getTransaction"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	poll := c.Calls["getTransaction"]
	fn := c.TransactionFunc
	c.mu.Unlock()

	if fn == nil {
		return Landed(nil), nil
	}
	return fn(poll, txSig)
}

// Landed builds a getTransaction result for a transaction that made it into
// a block with the given program error (nil for success).
func Landed(txErr interface{}) *rpc.GetTransactionResult {
	return &rpc.GetTransactionResult{
		Slot: 1,
		Meta: &rpc.TransactionMeta{Err: txErr},
	}
}

const tokenAccountSize = 165

// TokenAccountData encodes an initialized 165 byte SPL token account.
func TokenAccountData(mint solana.PublicKey, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, tokenAccountSize)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	// delegate: none (72..108), state: initialized
	data[108] = 1
	return data
}

// MintData encodes an initialized 82 byte SPL mint.
func MintData(decimals uint8, supply uint64) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1
	return data
}

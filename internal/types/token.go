package types

import "github.com/gagliardetto/solana-go"

// TokenAccountInfo is a point-in-time view of one (owner, mint) token
// account. It is fetched right before it is needed and never cached.
type TokenAccountInfo struct {
	Address  solana.PublicKey `json:"address"`
	Mint     solana.PublicKey `json:"mint"`
	Owner    solana.PublicKey `json:"owner"`
	Balance  string           `json:"balance"`
	Amount   uint64           `json:"amount"`
	Decimals uint8            `json:"decimals"`
	Exists   bool             `json:"exists"`
}

package types

import "github.com/gagliardetto/solana-go"

// PoolKeys holds every account a Raydium V4 swap has to reference. A value
// is built once per lookup and replaced wholesale, never patched.
type PoolKeys struct {
	ID               solana.PublicKey `json:"id"`
	BaseMint         solana.PublicKey `json:"baseMint"`
	QuoteMint        solana.PublicKey `json:"quoteMint"`
	LpMint           solana.PublicKey `json:"lpMint"`
	BaseDecimals     uint8            `json:"baseDecimals"`
	QuoteDecimals    uint8            `json:"quoteDecimals"`
	Version          int              `json:"version"`
	ProgramID        solana.PublicKey `json:"programId"`
	Authority        solana.PublicKey `json:"authority"`
	OpenOrders       solana.PublicKey `json:"openOrders"`
	TargetOrders     solana.PublicKey `json:"targetOrders"`
	BaseVault        solana.PublicKey `json:"baseVault"`
	QuoteVault       solana.PublicKey `json:"quoteVault"`
	WithdrawQueue    solana.PublicKey `json:"withdrawQueue"`
	LpVault          solana.PublicKey `json:"lpVault"`
	MarketProgramID  solana.PublicKey `json:"marketProgramId"`
	MarketID         solana.PublicKey `json:"marketId"`
	MarketAuthority  solana.PublicKey `json:"marketAuthority"`
	MarketBaseVault  solana.PublicKey `json:"marketBaseVault"`
	MarketQuoteVault solana.PublicKey `json:"marketQuoteVault"`
	MarketBids       solana.PublicKey `json:"marketBids"`
	MarketAsks       solana.PublicKey `json:"marketAsks"`
	MarketEventQueue solana.PublicKey `json:"marketEventQueue"`
	PoolOpenTime     uint64           `json:"poolOpenTime"`
}

// DecimalsFor returns the decimals recorded for mint, or false when mint is
// neither side of the pool.
func (p *PoolKeys) DecimalsFor(mint solana.PublicKey) (uint8, bool) {
	switch {
	case p.BaseMint.Equals(mint):
		return p.BaseDecimals, true
	case p.QuoteMint.Equals(mint):
		return p.QuoteDecimals, true
	}
	return 0, false
}

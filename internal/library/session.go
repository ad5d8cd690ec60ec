package bot

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/liquidity"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
)

// Session is the per-wallet context: the wallet and the pool keys of the
// last looked up token. The most recent lookup wins.
type Session struct {
	Wallet *config.Wallet

	mu       sync.Mutex
	poolKeys *types.PoolKeys
}

func NewSession(wallet *config.Wallet) *Session {
	return &Session{Wallet: wallet}
}

func (s *Session) SetPoolKeys(pKey *types.PoolKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolKeys = pKey
}

// PoolKeys returns the session keys when mint is the token they trade. WSOL
// never matches, it is the other side of every pool.
func (s *Session) PoolKeys(mint solana.PublicKey) (*types.PoolKeys, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poolKeys == nil {
		return nil, false
	}

	if !poolTrades(s.poolKeys, mint) {
		return nil, false
	}

	return s.poolKeys, true
}

// poolTrades reports whether mint is the non-WSOL side of the pool.
func poolTrades(pKey *types.PoolKeys, mint solana.PublicKey) bool {
	token, _, err := liquidity.GetMint(pKey)
	return err == nil && token.Equals(mint)
}

// checkTradable rejects WSOL as the token of a swap or lookup.
func checkTradable(mint solana.PublicKey) error {
	if mint.Equals(config.WRAPPED_SOL) {
		return fmt.Errorf("%w: %s is the SOL side of every pool", types.ErrInvalidAddress, mint)
	}
	return nil
}

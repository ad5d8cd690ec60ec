package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// State is the lifecycle of one submitted transaction:
// Built -> Signed -> Submitted -> Confirmed | Failed | TimedOut.
type State int

const (
	Built State = iota
	Signed
	Submitted
	Confirmed
	Failed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Built:
		return "BUILT"
	case Signed:
		return "SIGNED"
	case Submitted:
		return "SUBMITTED"
	case Confirmed:
		return "CONFIRMED"
	case Failed:
		return "FAILED"
	case TimedOut:
		return "TIMED_OUT"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PendingTransaction is built and sent once. After a failure or timeout it
// must be rebuilt with a fresh blockhash, never resent.
type PendingTransaction struct {
	Transaction *solana.Transaction
	Signature   solana.Signature
	State       State
}

// NewPendingTransaction compiles instructions into a v0 message paid by payer
// and signs it with payer plus any extra signers the instructions require.
func NewPendingTransaction(
	instructions []solana.Instruction,
	blockhash solana.Hash,
	payer solana.PrivateKey,
	signers ...solana.PrivateKey) (*PendingTransaction, error) {

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return nil, err
	}

	tx.Message.SetVersion(solana.MessageVersionV0)

	pending := &PendingTransaction{Transaction: tx, State: Built}

	keys := make(map[solana.PublicKey]solana.PrivateKey, len(signers)+1)
	keys[payer.PublicKey()] = payer
	for _, signer := range signers {
		keys[signer.PublicKey()] = signer
	}

	signatures, err := tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if signer, ok := keys[key]; ok {
				return &signer
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	pending.Signature = signatures[0]
	pending.State = Signed

	return pending, nil
}

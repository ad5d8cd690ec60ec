package transaction

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"go.uber.org/zap"
)

const DEFAULT_SEND_ATTEMPTS = 3

// Receipt reports how far a transaction got. Signature is set once the
// transaction has been signed.
type Receipt struct {
	Signature solana.Signature
	State     State
	Polls     int
}

type Submitter struct {
	client       rpc.Client
	sender       rpc.Sender
	confirmer    *Confirmer
	logger       *zap.Logger
	sendAttempts int
}

func NewSubmitter(client rpc.Client, sender rpc.Sender, confirmer *Confirmer, logger *zap.Logger) *Submitter {
	return &Submitter{
		client:       client,
		sender:       sender,
		confirmer:    confirmer,
		logger:       logger.Named("submitter"),
		sendAttempts: DEFAULT_SEND_ATTEMPTS,
	}
}

// Submit builds, signs, sends and confirms one transaction. The receipt is
// returned together with any error so callers can still report the
// signature of a failed or unconfirmed transaction.
func (s *Submitter) Submit(ctx context.Context, instructions []solana.Instruction, payer solana.PrivateKey, signers ...solana.PrivateKey) (*Receipt, error) {
	receipt := &Receipt{State: Built}

	blockhash, err := rpc.GetLatestBlockhash(ctx, s.client)
	if err != nil {
		return receipt, err
	}

	pending, err := NewPendingTransaction(instructions, blockhash, payer, signers...)
	if err != nil {
		return receipt, err
	}

	receipt.Signature = pending.Signature
	receipt.State = pending.State

	if err := s.send(ctx, pending); err != nil {
		return receipt, err
	}
	receipt.State = pending.State

	polls, err := s.confirmer.Await(ctx, pending.Signature)
	receipt.Polls = polls

	var failed *types.TransactionFailedError
	switch {
	case err == nil:
		receipt.State = Confirmed
	case errors.As(err, &failed):
		receipt.State = Failed
	case errors.Is(err, types.ErrConfirmationTimedOut):
		receipt.State = TimedOut
	}
	pending.State = receipt.State

	return receipt, err
}

// send retries transport failures. The signed bytes are identical on each
// attempt so a duplicate delivery is dropped by the cluster.
func (s *Submitter) send(ctx context.Context, pending *PendingTransaction) error {
	var err error

	for attempt := 1; attempt <= s.sendAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		_, err = s.sender.Send(ctx, pending.Transaction)
		if err == nil {
			pending.State = Submitted
			s.logger.Info("transaction sent", zap.String("signature", pending.Signature.String()), zap.Int("attempt", attempt))
			return nil
		}

		if !errors.Is(err, types.ErrRPCUnavailable) {
			return err
		}

		s.logger.Warn("send failed", zap.String("signature", pending.Signature.String()), zap.Int("attempt", attempt), zap.Error(err))
	}

	return err
}

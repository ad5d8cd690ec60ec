package rpc

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Sender broadcasts a signed transaction and returns its signature. Sending
// says nothing about whether the transaction lands.
type Sender interface {
	Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error)
}

type RpcSender struct {
	client Client
}

func NewRpcSender(client Client) *RpcSender {
	return &RpcSender{client: client}
}

func (s *RpcSender) Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	sig, err := s.client.SendTransactionWithOpts(ctx, transaction, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, unavailable("sendTransaction", err)
	}

	return sig, nil
}

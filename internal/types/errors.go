package types

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors. Malformed data is never retried; an unavailable RPC may be.
	ErrMalformedAccountData = errors.New("malformed account data")
	ErrNoPoolFound          = errors.New("no pool found")
	ErrRPCUnavailable       = errors.New("rpc unavailable")
	ErrIncompletePoolKeys   = errors.New("incomplete pool keys")

	// Operation errors.
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrTransactionFailed    = errors.New("transaction failed")
	ErrConfirmationTimedOut = errors.New("could not confirm transaction")
	ErrTokenAccountNotFound = errors.New("token account not found")
	ErrNoPoolKeys           = errors.New("no pool keys resolved for mint")

	// Input errors.
	ErrInvalidAddress   = errors.New("invalid solana address")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownWallet    = errors.New("unknown wallet")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrInvalidFilter    = errors.New("invalid search filter")
)

// TransactionFailedError carries the on-chain error of a transaction that
// landed but was rejected by a program.
type TransactionFailedError struct {
	Signature string
	Reason    string
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Signature, e.Reason)
}

func (e *TransactionFailedError) Unwrap() error {
	return ErrTransactionFailed
}

// UserMessage converts an error into the short warning shown to the user.
func UserMessage(err error) string {
	var failed *TransactionFailedError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &failed):
		return "Transaction failed: " + failed.Reason
	case errors.Is(err, ErrConfirmationTimedOut):
		return "Could not confirm transaction, check your balance before retrying"
	case errors.Is(err, ErrInsufficientBalance):
		return "Amount is greater than balance"
	case errors.Is(err, ErrInvalidAmount):
		return "Please enter a valid amount"
	case errors.Is(err, ErrInvalidAddress):
		return "Invalid Solana Address!"
	case errors.Is(err, ErrUnknownWallet):
		return "Please select a wallet first!"
	case errors.Is(err, ErrNoPoolFound):
		return "No Raydium pool found for token"
	case errors.Is(err, ErrNoPoolKeys):
		return "No pools keys found"
	case errors.Is(err, ErrTokenAccountNotFound):
		return "No token account found for token"
	case errors.Is(err, ErrMalformedAccountData):
		return "Pool account data could not be decoded"
	case errors.Is(err, ErrRPCUnavailable):
		return "RPC unavailable, try again"
	}

	return err.Error()
}

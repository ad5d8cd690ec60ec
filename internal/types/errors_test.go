package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionFailedErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("buy: %w", &TransactionFailedError{Signature: "sig", Reason: `{"InstructionError":[3,{"Custom":30}]}`})

	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.NotErrorIs(t, err, ErrConfirmationTimedOut)

	var failed *TransactionFailedError
	assert.True(t, errors.As(err, &failed))
	assert.Equal(t, "sig", failed.Signature)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&TransactionFailedError{Reason: "boom"}, "Transaction failed: boom"},
		{fmt.Errorf("sell: %w", ErrConfirmationTimedOut), "Could not confirm transaction, check your balance before retrying"},
		{fmt.Errorf("burn: %w", ErrInsufficientBalance), "Amount is greater than balance"},
		{ErrInvalidAmount, "Please enter a valid amount"},
		{errors.New("other"), "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}

func TestMySQLFilterBounded(t *testing.T) {
	assert.Equal(t, 50, MySQLFilter{}.Bounded(50).Limit)
	assert.Equal(t, 50, MySQLFilter{Limit: 5000}.Bounded(50).Limit)
	assert.Equal(t, 10, MySQLFilter{Limit: 10}.Bounded(50).Limit)
	assert.Equal(t, 0, MySQLFilter{Offset: -3}.Bounded(50).Offset)
}

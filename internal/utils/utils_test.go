package utils

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	for i := 0; i < 32; i++ {
		key := solana.NewWallet().PublicKey()
		assert.True(t, IsValidAddress(key.String()), key.String())
	}

	assert.True(t, IsValidAddress("So11111111111111111111111111111111111111112"))
	assert.True(t, IsValidAddress("11111111111111111111111111111111"))

	// Valid base58 but the wrong decoded length.
	assert.False(t, IsValidAddress(base58.Encode(make([]byte, 31))))
	assert.False(t, IsValidAddress(base58.Encode(append(make([]byte, 32), 1))))

	// Characters outside the base58 alphabet.
	assert.False(t, IsValidAddress("0OIl1111111111111111111111111111111"))
	assert.False(t, IsValidAddress(""))
	assert.False(t, IsValidAddress("So1111111111111111111111111111111111111111+"))
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 0.25 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("0.25")))

	for _, input := range []string{"", "0", "0.000", "-1", "abc"} {
		_, err := ParseAmount(input)
		assert.ErrorIs(t, err, types.ErrInvalidAmount, input)
	}
}

func TestToRawAmount(t *testing.T) {
	raw, err := ToRawAmount(decimal.RequireFromString("0.1"), 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), raw)

	raw, err = ToRawAmount(decimal.RequireFromString("69420.123456789"), 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(69_420_123_456), raw)

	_, err = ToRawAmount(decimal.RequireFromString("0.0000001"), 6)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = ToRawAmount(decimal.RequireFromString("100000000000000000000"), 9)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.5", FormatAmount(1_500_000, 6))
	assert.Equal(t, "0", FormatAmount(0, 9))
	assert.Equal(t, "42", FormatAmount(42, 0))
}

func TestParseOptionalUint(t *testing.T) {
	value, err := ParseOptionalUint("", 32)
	require.NoError(t, err)
	assert.Zero(t, value)

	value, err = ParseOptionalUint("100000", 32)
	require.NoError(t, err)
	assert.Equal(t, uint64(100000), value)

	_, err = ParseOptionalUint("5000000000", 32)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = ParseOptionalUint("1.5", 64)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestBuildSearchQuery(t *testing.T) {
	allowed := []string{"wallet", "action"}

	query, values, err := BuildSearchQuery("trades", allowed, types.MySQLFilter{
		Query: []types.MySQLQuery{
			{Column: "wallet", Op: "=", Query: "alice"},
			{Column: "action", Op: "like", Query: "BU%"},
		},
		Limit:  10,
		Offset: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM trades WHERE wallet = ? AND action LIKE ? LIMIT 10 OFFSET 5", query)
	assert.Equal(t, []any{"alice", "BU%"}, values)

	_, _, err = BuildSearchQuery("trades", allowed, types.MySQLFilter{Query: []types.MySQLQuery{{Column: "1; DROP TABLE trades", Op: "="}}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	_, _, err = BuildSearchQuery("trades", allowed, types.MySQLFilter{Query: []types.MySQLQuery{{Column: "wallet", Op: "OR 1=1 --"}}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestBuildInsertQuery(t *testing.T) {
	assert.Equal(t, "(a,b,c) VALUES (?,?,?)", BuildInsertQuery([]string{"a", "b", "c"}))
}

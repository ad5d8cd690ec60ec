package rpc

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedMemoTransaction(t *testing.T) *solana.Transaction {
	t.Helper()

	payer := solana.NewWallet().PrivateKey
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, []byte("jito"))},
		solana.Hash{1},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey { return &payer })
	require.NoError(t, err)

	return tx
}

func TestJitoSender(t *testing.T) {
	tx := signedMemoTransaction(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transactions", r.URL.Path)
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))

		reader, err := gzip.NewReader(r.Body)
		require.NoError(t, err)

		var body JitoRequestBody
		require.NoError(t, json.NewDecoder(reader).Decode(&body))
		assert.Equal(t, "sendTransaction", body.Method)
		require.Len(t, body.Params, 1)

		raw, err := base58.Decode(body.Params[0].(string))
		require.NoError(t, err)

		decoded, err := solana.TransactionFromBytes(raw)
		require.NoError(t, err)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  decoded.Signatures[0].String(),
		})
	}))
	defer server.Close()

	sig, err := NewJitoSender(server.URL+"/").Send(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Signatures[0], sig)
}

func TestJitoSenderError(t *testing.T) {
	tx := signedMemoTransaction(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]interface{}{"code": -32602, "message": "bundle rejected"},
		})
	}))
	defer server.Close()

	_, err := NewJitoSender(server.URL).Send(context.Background(), tx)
	assert.ErrorIs(t, err, types.ErrRPCUnavailable)
	assert.ErrorContains(t, err, "bundle rejected")
}

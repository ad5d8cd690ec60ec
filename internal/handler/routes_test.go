package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	bot "github.com/iqbalbaharum/raydium-swap-desk/internal/library"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrader struct {
	executed []bot.Operation
	err      error
}

func (f *fakeTrader) Wallets() []bot.WalletInfo {
	return []bot.WalletInfo{{ID: "main", PublicKey: "pub"}}
}

func (f *fakeTrader) Balance(ctx context.Context, walletID string, mint string) (*bot.Balance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &bot.Balance{Wallet: walletID, Mint: mint, Balance: "1.5", Exists: true}, nil
}

func (f *fakeTrader) Holdings(ctx context.Context, walletID string) (*bot.Holdings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &bot.Holdings{
		Wallet: walletID,
		Sol:    "2",
		Tokens: []*types.TokenAccountInfo{{Balance: "10", Decimals: 6, Exists: true}},
	}, nil
}

func (f *fakeTrader) Lookup(ctx context.Context, walletID string, mint string) (*bot.LookupResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &bot.LookupResult{Wallet: walletID, Mint: mint, PoolSol: "42"}, nil
}

func (f *fakeTrader) Execute(ctx context.Context, walletID string, op bot.Operation) *bot.Result {
	f.executed = append(f.executed, op)
	return &bot.Result{Operation: op.Name(), Wallet: walletID, Mint: op.TokenMint().String(), State: "CONFIRMED", Signature: "sig"}
}

type fakeTradeStore struct {
	filter types.MySQLFilter
	trades []types.Trade
	err    error
}

func (f *fakeTradeStore) Search(ctx context.Context, filter types.MySQLFilter) ([]types.Trade, error) {
	f.filter = filter
	return f.trades, f.err
}

func (f *fakeTradeStore) DeleteAll(ctx context.Context) (int64, error) {
	return int64(len(f.trades)), f.err
}

func serve(t *testing.T, handler http.Handler, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestListWallets(t *testing.T) {
	router := CreateRoutes(&fakeTrader{}, nil, nil)

	rec := serve(t, router, http.MethodGet, "/wallets", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	wallets := decodeBody[[]bot.WalletInfo](t, rec)
	assert.Equal(t, []bot.WalletInfo{{ID: "main", PublicKey: "pub"}}, wallets)
}

func TestBalance(t *testing.T) {
	router := CreateRoutes(&fakeTrader{}, nil, nil)

	rec := serve(t, router, http.MethodGet, "/wallets/main/balance?mint=abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	balance := decodeBody[bot.Balance](t, rec)
	assert.Equal(t, "main", balance.Wallet)
	assert.Equal(t, "abc", balance.Mint)
}

func TestBalanceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{types.ErrUnknownWallet, http.StatusNotFound},
		{fmt.Errorf("%w: x", types.ErrInvalidAddress), http.StatusBadRequest},
		{fmt.Errorf("%w: getBalance", types.ErrRPCUnavailable), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			router := CreateRoutes(&fakeTrader{err: tc.err}, nil, nil)

			rec := serve(t, router, http.MethodGet, "/wallets/main/balance", "")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestHoldings(t *testing.T) {
	router := CreateRoutes(&fakeTrader{}, nil, nil)

	rec := serve(t, router, http.MethodGet, "/wallets/main/holdings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	holdings := decodeBody[bot.Holdings](t, rec)
	assert.Equal(t, "main", holdings.Wallet)
	assert.Equal(t, "2", holdings.Sol)
	require.Len(t, holdings.Tokens, 1)
	assert.Equal(t, "10", holdings.Tokens[0].Balance)
}

func TestHoldingsUnknownWallet(t *testing.T) {
	router := CreateRoutes(&fakeTrader{err: types.ErrUnknownWallet}, nil, nil)

	rec := serve(t, router, http.MethodGet, "/wallets/nobody/holdings", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookup(t *testing.T) {
	router := CreateRoutes(&fakeTrader{}, nil, nil)

	rec := serve(t, router, http.MethodPost, "/wallets/main/lookup", `{"mint":"abc"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[bot.LookupResult](t, rec)
	assert.Equal(t, "abc", result.Mint)
	assert.Equal(t, "42", result.PoolSol)
}

func TestLookupNoPool(t *testing.T) {
	router := CreateRoutes(&fakeTrader{err: types.ErrNoPoolFound}, nil, nil)

	rec := serve(t, router, http.MethodPost, "/wallets/main/lookup", `{"mint":"abc"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "No Raydium pool found for token", body.Error)
}

func TestExecute(t *testing.T) {
	trader := &fakeTrader{}
	router := CreateRoutes(trader, nil, nil)
	mint := solana.NewWallet().PublicKey()

	rec := serve(t, router, http.MethodPost, "/wallets/main/sell",
		fmt.Sprintf(`{"mint":%q,"amount":"10","computeUnitPrice":"100"}`, mint))

	assert.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[bot.Result](t, rec)
	assert.Equal(t, "CONFIRMED", result.State)
	assert.Equal(t, "sell", result.Operation)

	require.Len(t, trader.executed, 1)
	sell, ok := trader.executed[0].(bot.Sell)
	require.True(t, ok)
	assert.Equal(t, mint, sell.Mint)
	assert.Equal(t, uint64(100), sell.Compute.MicroLamports)
}

func TestExecuteRejectsInput(t *testing.T) {
	trader := &fakeTrader{}
	router := CreateRoutes(trader, nil, nil)
	mint := solana.NewWallet().PublicKey()

	rec := serve(t, router, http.MethodPost, "/wallets/main/burn", fmt.Sprintf(`{"mint":%q,"amount":"abc"}`, mint))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	result := decodeBody[bot.Result](t, rec)
	assert.Equal(t, bot.OUTCOME_REJECTED, result.State)
	assert.Equal(t, "Please enter a valid amount", result.Warning)
	assert.Empty(t, trader.executed)

	rec = serve(t, router, http.MethodPost, "/wallets/main/swap", fmt.Sprintf(`{"mint":%q,"amount":"1"}`, mint))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, router, http.MethodPost, "/wallets/main/buy", `{"mint":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, trader.executed)
}

func TestTradeSearch(t *testing.T) {
	store := &fakeTradeStore{trades: []types.Trade{{Wallet: "main", Action: "BUY", Status: "CONFIRMED"}}}
	router := CreateRoutes(&fakeTrader{}, store, nil)

	rec := serve(t, router, http.MethodGet, "/trade", `{"query":[{"column":"action","op":"=","query":"BUY"}],"limit":5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	trades := decodeBody[[]types.Trade](t, rec)
	require.Len(t, trades, 1)
	assert.Equal(t, "BUY", trades[0].Action)
	assert.Equal(t, 5, store.filter.Limit)
	assert.Equal(t, "action", store.filter.Query[0].Column)
}

func TestTradeSearchBadFilter(t *testing.T) {
	store := &fakeTradeStore{err: fmt.Errorf("%w: unsupported column %q", types.ErrInvalidFilter, "secret")}
	router := CreateRoutes(&fakeTrader{}, store, nil)

	rec := serve(t, router, http.MethodGet, "/trade", `{"query":[{"column":"secret","op":"=","query":"x"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeDeleteAll(t *testing.T) {
	store := &fakeTradeStore{trades: make([]types.Trade, 3)}
	router := CreateRoutes(&fakeTrader{}, store, nil)

	rec := serve(t, router, http.MethodDelete, "/trade", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decodeBody[deleteResponse](t, rec).Deleted)
}

func TestTradeJournalDisabled(t *testing.T) {
	router := CreateRoutes(&fakeTrader{}, nil, nil)

	rec := serve(t, router, http.MethodGet, "/trade", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, router, http.MethodDelete, "/trade", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "swapdesk_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	router := CreateRoutes(&fakeTrader{}, nil, reg)

	rec := serve(t, router, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swapdesk_test_total 1")
}

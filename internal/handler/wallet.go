package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	bot "github.com/iqbalbaharum/raydium-swap-desk/internal/library"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
)

type Trader interface {
	Wallets() []bot.WalletInfo
	Balance(ctx context.Context, walletID string, mint string) (*bot.Balance, error)
	Holdings(ctx context.Context, walletID string) (*bot.Holdings, error)
	Lookup(ctx context.Context, walletID string, mint string) (*bot.LookupResult, error)
	Execute(ctx context.Context, walletID string, op bot.Operation) *bot.Result
}

type walletHandler struct {
	trader Trader
}

func NewWalletHandler(trader Trader) *walletHandler {
	return &walletHandler{trader: trader}
}

type lookupRequest struct {
	Mint string `json:"mint"`
}

func (h *walletHandler) List(w http.ResponseWriter, r *http.Request) {
	utils.Encode(w, r, http.StatusOK, h.trader.Wallets())
}

func (h *walletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.trader.Balance(r.Context(), chi.URLParam(r, "wallet"), r.URL.Query().Get("mint"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.Encode(w, r, http.StatusOK, balance)
}

func (h *walletHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.trader.Holdings(r.Context(), chi.URLParam(r, "wallet"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.Encode(w, r, http.StatusOK, holdings)
}

func (h *walletHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	req, err := utils.Decode[lookupRequest](r)
	if err != nil {
		utils.Encode(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.trader.Lookup(r.Context(), chi.URLParam(r, "wallet"), req.Mint)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.Encode(w, r, http.StatusOK, result)
}

// Execute always answers with a result. Input that cannot be parsed never
// reaches the trader.
func (h *walletHandler) Execute(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "wallet")
	name := chi.URLParam(r, "operation")

	input, err := utils.Decode[bot.OperationInput](r)
	if err != nil {
		utils.Encode(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	op, err := bot.ParseOperation(name, input)
	if err != nil {
		utils.Encode(w, r, statusFor(err), &bot.Result{
			Operation: name,
			Wallet:    walletID,
			Mint:      input.Mint,
			State:     bot.OUTCOME_REJECTED,
			Warning:   types.UserMessage(err),
		})
		return
	}

	utils.Encode(w, r, http.StatusOK, h.trader.Execute(r.Context(), walletID, op))
}

package handler

import (
	"context"
	"net/http"

	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
)

type TradeStore interface {
	Search(ctx context.Context, filter types.MySQLFilter) ([]types.Trade, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type tradeHandler struct {
	store TradeStore
}

// NewTradeHandler serves the trade journal. store may be nil when no
// database is configured.
func NewTradeHandler(store TradeStore) *tradeHandler {
	return &tradeHandler{store: store}
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *tradeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.Encode(w, r, http.StatusServiceUnavailable, errorResponse{Error: ErrJournalDisabled})
		return
	}

	decoded, err := utils.Decode[types.MySQLFilter](r)
	if err != nil {
		utils.Encode(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx := r.Context()
	trades, err := h.store.Search(ctx, decoded)
	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			utils.Encode(w, r, statusFor(err), errorResponse{Error: err.Error()})
		}
		return
	}

	if trades == nil {
		trades = []types.Trade{}
	}

	utils.Encode(w, r, http.StatusOK, trades)
}

func (h *tradeHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.Encode(w, r, http.StatusServiceUnavailable, errorResponse{Error: ErrJournalDisabled})
		return
	}

	ctx := r.Context()
	deleted, err := h.store.DeleteAll(ctx)
	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.Encode(w, r, http.StatusOK, deleteResponse{Deleted: deleted})
}

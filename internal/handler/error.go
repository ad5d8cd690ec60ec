package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
)

const (
	ErrTimeout         = "request timed out"
	ErrJournalDisabled = "trade journal is not configured"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrUnknownWallet), errors.Is(err, types.ErrNoPoolFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidAddress),
		errors.Is(err, types.ErrInvalidAmount),
		errors.Is(err, types.ErrUnknownOperation),
		errors.Is(err, types.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrRPCUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	message := types.UserMessage(err)
	if status == http.StatusGatewayTimeout {
		message = ErrTimeout
	}

	utils.Encode(w, r, status, errorResponse{Error: message})
}

package bot

import (
	"context"
	"strings"

	"github.com/iqbalbaharum/raydium-swap-desk/internal/transaction"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
	"go.uber.org/zap"
)

// recordTrade journals every transaction that reached the cluster. A journal
// failure is logged and never changes the operation result.
func (t *Trader) recordTrade(ctx context.Context, session *Session, op Operation, exec *execution, receipt *transaction.Receipt, logger *zap.Logger) {
	if t.journal == nil || receipt.State < transaction.Submitted {
		return
	}

	mint := op.TokenMint()
	trade := &types.Trade{
		Wallet:    session.Wallet.ID,
		Mint:      &mint,
		Action:    strings.ToUpper(op.Name()),
		Amount:    tradeAmount(op, exec),
		Signature: receipt.Signature.String(),
		Status:    receipt.State.String(),
		Timestamp: t.clock.Now().Unix(),
	}

	if exec.poolKeys != nil {
		ammId := exec.poolKeys.ID
		trade.AmmId = &ammId
	}

	if err := t.journal.Set(ctx, trade); err != nil {
		logger.Warn("failed to record trade", zap.String("signature", trade.Signature), zap.Error(err))
	}
}

// tradeAmount is the input amount in display units: SOL for a buy, tokens
// for everything else.
func tradeAmount(op Operation, exec *execution) string {
	if op.Name() == OP_BUY {
		return utils.FormatAmount(exec.amount, SOL_DECIMALS)
	}
	return utils.FormatAmount(exec.amount, exec.decimals)
}

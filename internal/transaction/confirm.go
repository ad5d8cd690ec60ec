package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ConfirmConfig sets the polling budget. The wait after each poll starts at
// Interval and grows by Multiplier up to MaxInterval. A Multiplier of 1 or
// less keeps the interval fixed.
type ConfirmConfig struct {
	MaxAttempts int
	Interval    time.Duration
	Multiplier  float64
	MaxInterval time.Duration
	Clock       clock.Clock
	Registerer  prometheus.Registerer
}

// Confirmer polls getTransaction until the transaction is found or the
// attempt budget runs out.
type Confirmer struct {
	client      rpc.Client
	clock       clock.Clock
	maxAttempts int
	interval    time.Duration
	multiplier  float64
	maxInterval time.Duration
	logger      *zap.Logger
	metrics     *confirmMetrics
}

func NewConfirmer(client rpc.Client, cfg ConfirmConfig, logger *zap.Logger) *Confirmer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 20
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.MaxInterval < cfg.Interval {
		cfg.MaxInterval = cfg.Interval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Confirmer{
		client:      client,
		clock:       cfg.Clock,
		maxAttempts: cfg.MaxAttempts,
		interval:    cfg.Interval,
		multiplier:  cfg.Multiplier,
		maxInterval: cfg.MaxInterval,
		logger:      logger.Named("confirmer"),
		metrics:     newConfirmMetrics(cfg.Registerer),
	}
}

// Await returns after the transaction lands (nil), lands with a program
// error (*types.TransactionFailedError), the budget is exhausted
// (types.ErrConfirmationTimedOut) or ctx is done. The number of polls made
// is returned in every case.
func (c *Confirmer) Await(ctx context.Context, sig solana.Signature) (int, error) {
	maxVersion := uint64(0)
	opts := &solanarpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     solanarpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		tx, err := c.client.GetTransaction(ctx, sig, opts)

		switch {
		case err == nil && tx != nil && tx.Meta != nil:
			if tx.Meta.Err != nil {
				reason := describeError(tx.Meta.Err)
				c.logger.Error("transaction failed",
					zap.String("signature", sig.String()),
					zap.String("reason", reason),
					zap.Int("attempt", attempt))
				c.metrics.observe(attempt, Failed)
				return attempt, &types.TransactionFailedError{Signature: sig.String(), Reason: reason}
			}

			c.logger.Info("transaction confirmed", zap.String("signature", sig.String()), zap.Int("attempt", attempt))
			c.metrics.observe(attempt, Confirmed)
			return attempt, nil
		case err == nil, errors.Is(err, solanarpc.ErrNotFound):
			c.logger.Debug("awaiting confirmation", zap.String("signature", sig.String()), zap.Int("attempt", attempt))
		default:
			c.logger.Warn("confirmation poll failed", zap.String("signature", sig.String()), zap.Int("attempt", attempt), zap.Error(err))
		}

		if attempt == c.maxAttempts {
			break
		}

		timer := c.clock.Timer(c.wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.Error("max retries reached, could not confirm transaction", zap.String("signature", sig.String()))
	c.metrics.observe(c.maxAttempts, TimedOut)

	return c.maxAttempts, fmt.Errorf("%w: %s after %d attempts", types.ErrConfirmationTimedOut, sig, c.maxAttempts)
}

// wait is the pause after the given poll.
func (c *Confirmer) wait(attempt int) time.Duration {
	wait := float64(c.interval) * math.Pow(c.multiplier, float64(attempt-1))
	if wait > float64(c.maxInterval) {
		return c.maxInterval
	}
	return time.Duration(wait)
}

func describeError(txErr interface{}) string {
	if s, ok := txErr.(string); ok {
		return s
	}

	data, err := json.Marshal(txErr)
	if err != nil {
		return fmt.Sprint(txErr)
	}
	return string(data)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/instructions"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/liquidity"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/pool"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/transaction"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const SOL_DECIMALS = 9

type Submitter interface {
	Submit(ctx context.Context, instructions []solana.Instruction, payer solana.PrivateKey, signers ...solana.PrivateKey) (*transaction.Receipt, error)
}

type TradeJournal interface {
	Set(ctx context.Context, trade *types.Trade) error
}

type TraderConfig struct {
	Client     rpc.Client
	Resolver   *liquidity.Resolver
	Submitter  Submitter
	Journal    TradeJournal
	Wallets    map[string]*config.Wallet
	Clock      clock.Clock
	Registerer prometheus.Registerer
}

// Trader runs the buy, sell, burn and close operations for a fixed set of
// wallets. Operations on one wallet are serialized.
type Trader struct {
	client    rpc.Client
	resolver  *liquidity.Resolver
	submitter Submitter
	journal   TradeJournal
	sessions  map[string]*Session
	queue     *pool.WalletPool
	clock     clock.Clock
	logger    *zap.Logger
	metrics   *operationMetrics
}

// Result is what an operation reports back. Warning is set whenever the
// operation did not confirm.
type Result struct {
	Operation   string `json:"operation"`
	Wallet      string `json:"wallet"`
	Mint        string `json:"mint"`
	Signature   string `json:"signature,omitempty"`
	ExplorerUrl string `json:"explorerUrl,omitempty"`
	State       string `json:"state"`
	Balance     string `json:"balance,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

func NewTrader(cfg TraderConfig, logger *zap.Logger) *Trader {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	sessions := make(map[string]*Session, len(cfg.Wallets))
	for id, wallet := range cfg.Wallets {
		sessions[id] = NewSession(wallet)
	}

	return &Trader{
		client:    cfg.Client,
		resolver:  cfg.Resolver,
		submitter: cfg.Submitter,
		journal:   cfg.Journal,
		sessions:  sessions,
		queue:     pool.NewWalletPool(8),
		clock:     cfg.Clock,
		logger:    logger.Named("trader"),
		metrics:   newOperationMetrics(cfg.Registerer),
	}
}

// Close waits for queued operations to finish.
func (t *Trader) Close() {
	t.queue.Close()
}

func (t *Trader) session(walletID string) (*Session, error) {
	session, ok := t.sessions[walletID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownWallet, walletID)
	}
	return session, nil
}

// Execute runs op for the wallet. It never returns an error: every failure,
// including a panic, ends up in Result.Warning. A caller that leaves early
// gets an ABANDONED result; the operation itself still completes.
func (t *Trader) Execute(ctx context.Context, walletID string, op Operation) *Result {
	logger := t.logger.With(
		zap.String("wallet", walletID),
		zap.String("operation", op.Name()),
		zap.String("mint", op.TokenMint().String()))

	session, err := t.session(walletID)
	if err != nil {
		return t.reject(newResult(walletID, op), err, logger)
	}

	// The job owns its result and hands it over only once it is final.
	done := make(chan *Result, 1)
	err = t.queue.Do(ctx, walletID, func(jobCtx context.Context) error {
		done <- t.run(jobCtx, session, walletID, op, logger)
		return nil
	})

	select {
	case result := <-done:
		return result
	default:
	}

	result := newResult(walletID, op)
	abandoned := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if abandoned && !errors.Is(err, pool.ErrNotQueued) {
		logger.Warn("caller left before the operation finished", zap.Error(err))
		result.State = OUTCOME_ABANDONED
		result.Warning = "Request ended before the operation finished, check your balance before retrying"
		return result
	}

	return t.reject(result, err, logger)
}

func newResult(walletID string, op Operation) *Result {
	return &Result{
		Operation: op.Name(),
		Wallet:    walletID,
		Mint:      op.TokenMint().String(),
		State:     OUTCOME_REJECTED,
	}
}

// run executes op and records its outcome. Only the wallet worker touches
// the result until it is returned.
func (t *Trader) run(ctx context.Context, session *Session, walletID string, op Operation, logger *zap.Logger) *Result {
	result := newResult(walletID, op)

	if err := t.execute(ctx, session, op, result, logger); err != nil {
		logger.Error("operation failed", zap.String("signature", result.Signature), zap.Error(err))
		result.Warning = types.UserMessage(err)
	}

	t.metrics.record(op.Name(), result.State)
	return result
}

// reject reports an operation whose job produced no result.
func (t *Trader) reject(result *Result, err error, logger *zap.Logger) *Result {
	logger.Error("operation failed", zap.Error(err))
	result.Warning = types.UserMessage(err)
	t.metrics.record(result.Operation, result.State)
	return result
}

func (t *Trader) execute(ctx context.Context, session *Session, op Operation, result *Result, logger *zap.Logger) error {
	var (
		exec *execution
		err  error
	)

	switch o := op.(type) {
	case Buy:
		exec, err = t.prepareBuy(ctx, session, o, logger)
	case Sell:
		exec, err = t.prepareSell(ctx, session, o, logger)
	case Burn:
		exec, err = t.prepareBurn(ctx, session, o)
	case Close:
		exec, err = t.prepareClose(ctx, session, o)
	default:
		err = fmt.Errorf("%w: %T", types.ErrUnknownOperation, op)
	}

	if err != nil {
		return err
	}

	receipt, err := t.submitter.Submit(ctx, exec.plan.Instructions, session.Wallet.PrivateKey, exec.plan.Signers...)
	if receipt != nil {
		result.State = receipt.State.String()
		if !receipt.Signature.IsZero() {
			result.Signature = receipt.Signature.String()
			result.ExplorerUrl = config.EXPLORER_TX_URL + result.Signature
		}
		t.recordTrade(ctx, session, op, exec, receipt, logger)
	}

	if err == nil {
		logger.Info("transaction landed", zap.String("signature", result.Signature), zap.String("url", result.ExplorerUrl))
	}

	// The balance is shown after every submission, including failures and
	// timeouts where the transaction may still land.
	if info, balanceErr := rpc.GetTokenAccountInfo(ctx, t.client, session.Wallet.PublicKey, op.TokenMint(), exec.decimals); balanceErr != nil {
		logger.Warn("failed to refresh balance", zap.Error(balanceErr))
	} else {
		result.Balance = info.Balance
	}

	return err
}

// execution is a plan ready to submit plus what is needed to report it.
type execution struct {
	plan     *instructions.Plan
	poolKeys *types.PoolKeys
	amount   uint64
	decimals uint8
}

func (t *Trader) prepareBuy(ctx context.Context, session *Session, op Buy, logger *zap.Logger) (*execution, error) {
	pKey, err := t.poolKeys(ctx, session, op.Mint)
	if err != nil {
		return nil, err
	}

	decimals, _ := pKey.DecimalsFor(op.Mint)

	amountIn, err := utils.ToRawAmount(op.Amount, SOL_DECIMALS)
	if err != nil {
		return nil, err
	}

	rent, err := rpc.GetRentExemption(ctx, t.client, uint64(config.TA_SIZE))
	if err != nil {
		return nil, err
	}

	lamports, err := rpc.GetBalance(ctx, t.client, session.Wallet.PublicKey)
	if err != nil {
		return nil, err
	}

	if amountIn > math.MaxUint64-rent || amountIn+rent > lamports {
		return nil, fmt.Errorf("%w: need %s SOL plus %d lamports rent, have %d", types.ErrInsufficientBalance, op.Amount, rent, lamports)
	}

	destination, err := rpc.GetAssociatedTokenAccountInfo(ctx, t.client, session.Wallet.PublicKey, op.Mint, decimals)
	if err != nil {
		return nil, err
	}

	warnNoMinAmountOut(logger, op.MinAmountOut)

	plan, err := instructions.BuildBuyPlan(instructions.BuyParams{
		PoolKeys:          pKey,
		Owner:             session.Wallet.PublicKey,
		AmountIn:          amountIn,
		MinAmountOut:      op.MinAmountOut,
		RentExemption:     rent,
		DestinationExists: destination.Exists,
		Compute:           op.Compute,
	})
	if err != nil {
		return nil, err
	}

	return &execution{plan: plan, poolKeys: pKey, amount: amountIn, decimals: decimals}, nil
}

func (t *Trader) prepareSell(ctx context.Context, session *Session, op Sell, logger *zap.Logger) (*execution, error) {
	pKey, err := t.poolKeys(ctx, session, op.Mint)
	if err != nil {
		return nil, err
	}

	decimals, _ := pKey.DecimalsFor(op.Mint)

	source, err := t.existingTokenAccount(ctx, session, op.Mint, decimals)
	if err != nil {
		return nil, err
	}

	amountIn, err := utils.ToRawAmount(op.Amount, decimals)
	if err != nil {
		return nil, err
	}

	wsol, err := rpc.GetAssociatedTokenAccountInfo(ctx, t.client, session.Wallet.PublicKey, config.WRAPPED_SOL, SOL_DECIMALS)
	if err != nil {
		return nil, err
	}

	warnNoMinAmountOut(logger, op.MinAmountOut)

	plan, err := instructions.BuildSellPlan(instructions.SellParams{
		PoolKeys:          pKey,
		Owner:             session.Wallet.PublicKey,
		TokenAccount:      source.Address,
		AmountIn:          amountIn,
		Balance:           source.Amount,
		MinAmountOut:      op.MinAmountOut,
		WsolAccountExists: wsol.Exists,
		Compute:           op.Compute,
	})
	if err != nil {
		return nil, err
	}

	return &execution{plan: plan, poolKeys: pKey, amount: amountIn, decimals: decimals}, nil
}

func (t *Trader) prepareBurn(ctx context.Context, session *Session, op Burn) (*execution, error) {
	pKey, decimals, err := t.decimals(ctx, session, op.Mint)
	if err != nil {
		return nil, err
	}

	account, err := t.existingTokenAccount(ctx, session, op.Mint, decimals)
	if err != nil {
		return nil, err
	}

	amount, err := utils.ToRawAmount(op.Amount, decimals)
	if err != nil {
		return nil, err
	}

	plan, err := instructions.BuildBurnPlan(instructions.BurnParams{
		Mint:         op.Mint,
		Owner:        session.Wallet.PublicKey,
		TokenAccount: account.Address,
		Amount:       amount,
		Balance:      account.Amount,
		Compute:      op.Compute,
	})
	if err != nil {
		return nil, err
	}

	return &execution{plan: plan, poolKeys: pKey, amount: amount, decimals: decimals}, nil
}

func (t *Trader) prepareClose(ctx context.Context, session *Session, op Close) (*execution, error) {
	pKey, decimals, err := t.decimals(ctx, session, op.Mint)
	if err != nil {
		return nil, err
	}

	account, err := t.existingTokenAccount(ctx, session, op.Mint, decimals)
	if err != nil {
		return nil, err
	}

	plan, err := instructions.BuildClosePlan(instructions.CloseParams{
		Owner:        session.Wallet.PublicKey,
		TokenAccount: account.Address,
		Compute:      op.Compute,
	})
	if err != nil {
		return nil, err
	}

	return &execution{plan: plan, poolKeys: pKey, amount: account.Amount, decimals: decimals}, nil
}

// poolKeys returns the session keys for mint, looking the pool up when the
// session holds keys for another token.
func (t *Trader) poolKeys(ctx context.Context, session *Session, mint solana.PublicKey) (*types.PoolKeys, error) {
	if err := checkTradable(mint); err != nil {
		return nil, err
	}

	if pKey, ok := session.PoolKeys(mint); ok {
		return pKey, nil
	}

	pKey, err := t.resolver.Lookup(ctx, mint)
	if err != nil {
		return nil, err
	}

	if !poolTrades(pKey, mint) {
		return nil, fmt.Errorf("%w: %s", types.ErrNoPoolKeys, mint)
	}

	session.SetPoolKeys(pKey)
	return pKey, nil
}

// decimals prefers the session pool keys and falls back to the mint account,
// so tokens without a pool can still be burned or closed.
func (t *Trader) decimals(ctx context.Context, session *Session, mint solana.PublicKey) (*types.PoolKeys, uint8, error) {
	if pKey, ok := session.PoolKeys(mint); ok {
		decimals, _ := pKey.DecimalsFor(mint)
		return pKey, decimals, nil
	}

	decimals, err := rpc.GetMintDecimals(ctx, t.client, mint)
	if err != nil {
		return nil, 0, err
	}
	return nil, decimals, nil
}

func (t *Trader) existingTokenAccount(ctx context.Context, session *Session, mint solana.PublicKey, decimals uint8) (*types.TokenAccountInfo, error) {
	info, err := rpc.GetTokenAccountInfo(ctx, t.client, session.Wallet.PublicKey, mint, decimals)
	if err != nil {
		return nil, err
	}

	if !info.Exists {
		return nil, fmt.Errorf("%w: %s", types.ErrTokenAccountNotFound, info.Address)
	}

	return info, nil
}

func warnNoMinAmountOut(logger *zap.Logger, minAmountOut uint64) {
	if minAmountOut == 0 {
		logger.Warn("swap has no minimum amount out, the trade is not protected against slippage")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/go-chi/chi/v5"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/adapter"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/config"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/handler"
	bot "github.com/iqbalbaharum/raydium-swap-desk/internal/library"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/liquidity"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/rpc"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/storage"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/transaction"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type Server struct {
	Router *chi.Mux
}

func CreateServer(trader handler.Trader, trades handler.TradeStore, gatherer prometheus.Gatherer) *Server {
	server := &Server{
		Router: handler.CreateRoutes(trader, trades, gatherer),
	}

	return server
}

func newLogger() (*zap.Logger, error) {
	if config.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := config.InitEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("swap desk stopped", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, id := range config.WalletIDs(config.Wallets) {
		logger.Info("wallet loaded", zap.String("wallet", id), zap.String("publicKey", config.Wallets[id].PublicKey.String()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Both stores are optional. A nil interface disables them.
	var cache liquidity.PoolKeysCache
	if config.RedisAddr != "" {
		client, err := adapter.InitRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return err
		}
		defer adapter.CloseRedisClients()

		cache = storage.NewPoolKeysStorage(client, config.PoolKeysTTL)
		logger.Info("pool keys cache enabled", zap.String("addr", config.RedisAddr), zap.Duration("ttl", config.PoolKeysTTL))
	}

	var (
		journal bot.TradeJournal
		trades  handler.TradeStore
	)
	if config.MySqlDsn != "" {
		if err := adapter.InitMySQLClient(ctx, config.MySqlDsn); err != nil {
			return err
		}

		mySqlClient, err := adapter.GetMySQLClient()
		if err != nil {
			return err
		}
		defer mySqlClient.Close()

		storage.Init(mySqlClient)
		journal, trades = storage.Trade, storage.Trade
		logger.Info("trade journal enabled")
	}

	client := rpc.NewClient(config.RpcHttpUrl)

	var sender rpc.Sender = rpc.NewRpcSender(client)
	if config.Sender == config.SENDER_JITO {
		sender = rpc.NewJitoSender(config.BlockEngineUrl)
	}
	logger.Info("transaction sender", zap.String("sender", config.Sender), zap.String("rpc", config.RpcHttpUrl))

	confirmer := transaction.NewConfirmer(client, transaction.ConfirmConfig{
		MaxAttempts: config.ConfirmMaxAttempts,
		Interval:    config.ConfirmInterval,
		Multiplier:  config.ConfirmBackoff,
		MaxInterval: config.ConfirmMaxInterval,
		Registerer:  reg,
	}, logger)

	trader := bot.NewTrader(bot.TraderConfig{
		Client:     client,
		Resolver:   liquidity.NewResolver(client, cache, logger),
		Submitter:  transaction.NewSubmitter(client, sender, confirmer, logger),
		Journal:    journal,
		Wallets:    config.Wallets,
		Registerer: reg,
	}, logger)
	defer trader.Close()

	server := CreateServer(trader, trades, reg)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.Int("port", config.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	// A confirmation can take a full minute; let it finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

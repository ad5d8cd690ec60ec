package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
)

var (
	WRAPPED_SOL          = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	RAYDIUM_AMM_V4       = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OPENBOOK_ID          = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	RAYDIUM_AUTHORITY    = solana.MustPublicKeyFromBase58("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")
	LAMPORTS_PER_SOL     = 1000000000
	TA_SIZE              = 165
	EXPLORER_TX_URL      = "https://solscan.io/tx/"
	EXPLORER_ACCOUNT_URL = "https://solscan.io/account/"
)

const (
	SENDER_RPC  = "rpc"
	SENDER_JITO = "jito"
)

var (
	RpcHttpUrl         string
	Sender             string
	BlockEngineUrl     string
	WalletsFile        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	PoolKeysTTL        time.Duration
	MySqlDsn           string
	Port               int
	ConfirmMaxAttempts int
	ConfirmInterval    time.Duration
	ConfirmBackoff     float64
	ConfirmMaxInterval time.Duration
	LogDevelopment     bool
	Wallets            map[string]*Wallet
)

// InitEnv loads .env (when present) and the process environment into the
// package variables, then loads the wallet map. It is called once at startup.
func InitEnv() error {
	// A missing .env is fine, every value can come from the environment.
	_ = godotenv.Load()

	RpcHttpUrl = getEnv("RPC_HTTP_URL", rpc.MainNetBeta_RPC)
	Sender = getEnv("SENDER", SENDER_RPC)
	BlockEngineUrl = getEnv("BLOCKENGINE_URL", "https://mainnet.block-engine.jito.wtf")
	WalletsFile = os.Getenv("WALLETS_FILE")
	RedisAddr = os.Getenv("REDIS_ADDR")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	MySqlDsn = os.Getenv("MYSQL_DSN")
	LogDevelopment = os.Getenv("LOG_DEVELOPMENT") == "true"

	var err error
	if RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return err
	}

	if Port, err = getEnvInt("PORT", 5000); err != nil {
		return err
	}

	if ConfirmMaxAttempts, err = getEnvInt("CONFIRM_MAX_ATTEMPTS", 20); err != nil {
		return err
	}

	if ConfirmInterval, err = getEnvDuration("CONFIRM_INTERVAL", 3*time.Second); err != nil {
		return err
	}

	if ConfirmMaxInterval, err = getEnvDuration("CONFIRM_MAX_INTERVAL", ConfirmInterval); err != nil {
		return err
	}

	if ConfirmBackoff, err = getEnvFloat("CONFIRM_BACKOFF", 1); err != nil {
		return err
	}

	if PoolKeysTTL, err = getEnvDuration("POOL_KEYS_TTL", 24*time.Hour); err != nil {
		return err
	}

	if Sender != SENDER_RPC && Sender != SENDER_JITO {
		return fmt.Errorf("invalid SENDER %q: expected %s or %s", Sender, SENDER_RPC, SENDER_JITO)
	}

	Wallets, err = LoadWallets(WalletsFile, os.Getenv("PAYER_PRIVATE_KEY"))
	if err != nil {
		return err
	}

	return nil
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

const DEFAULT_WALLET = "default"

type Wallet struct {
	ID         string
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

type walletsFile struct {
	Wallets map[string]string `yaml:"wallets"`
}

// LoadWallets reads the wallet id -> base58 secret key map from a YAML file.
// When path is empty the single payer key is registered as the default wallet.
func LoadWallets(path string, payerKey string) (map[string]*Wallet, error) {
	secrets := make(map[string]string)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read wallets file: %w", err)
		}

		var file walletsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse wallets file: %w", err)
		}

		for id, secret := range file.Wallets {
			secrets[id] = secret
		}
	} else if payerKey != "" {
		secrets[DEFAULT_WALLET] = payerKey
	}

	if len(secrets) == 0 {
		return nil, errors.New("no wallets configured: set WALLETS_FILE or PAYER_PRIVATE_KEY")
	}

	wallets := make(map[string]*Wallet, len(secrets))
	for id, secret := range secrets {
		key, err := solana.PrivateKeyFromBase58(secret)
		if err != nil {
			return nil, fmt.Errorf("error processing wallet %s: %w", id, err)
		}

		wallets[id] = &Wallet{
			ID:         id,
			PrivateKey: key,
			PublicKey:  key.PublicKey(),
		}
	}

	return wallets, nil
}

// WalletIDs returns the configured wallet ids in a stable order.
func WalletIDs(wallets map[string]*Wallet) []string {
	ids := make([]string, 0, len(wallets))
	for id := range wallets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/redis/go-redis/v9"
)

// PoolKeysStorage caches resolved pool keys per amm id and the pair address
// per mint. Only successful lookups are stored.
type PoolKeysStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPoolKeysStorage(client *redis.Client, ttl time.Duration) *PoolKeysStorage {
	return &PoolKeysStorage{client: client, ttl: ttl}
}

func (s *PoolKeysStorage) SetPoolKeys(ctx context.Context, pKey *types.PoolKeys) error {
	data, err := json.Marshal(pKey)
	if err != nil {
		return err
	}

	return s.hset(ctx, pKey.ID.String(), KEY_POOLKEYS, data)
}

func (s *PoolKeysStorage) GetPoolKeys(ctx context.Context, ammId solana.PublicKey) (*types.PoolKeys, error) {
	data, err := s.client.HGet(ctx, ammId.String(), KEY_POOLKEYS).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	var pKey types.PoolKeys
	if err := json.Unmarshal([]byte(data), &pKey); err != nil {
		return nil, err
	}

	return &pKey, nil
}

func (s *PoolKeysStorage) SetPair(ctx context.Context, mint solana.PublicKey, pair solana.PublicKey) error {
	return s.hset(ctx, mint.String(), KEY_PAIR, pair.String())
}

func (s *PoolKeysStorage) GetPair(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	data, err := s.client.HGet(ctx, mint.String(), KEY_PAIR).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return solana.PublicKey{}, ErrKeyNotFound
		}
		return solana.PublicKey{}, err
	}

	return solana.PublicKeyFromBase58(data)
}

func (s *PoolKeysStorage) hset(ctx context.Context, key string, field string, value interface{}) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

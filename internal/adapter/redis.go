package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	clients   = make(map[int]*redis.Client)
	clientsMu sync.Mutex
)

// InitRedisClient connects to one logical Redis database and keeps the client
// for later GetRedisClient calls.
func InitRedisClient(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("Redis host is empty")
	}

	clientsMu.Lock()
	defer clientsMu.Unlock()

	if client, exists := clients[db]; exists {
		return client, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Ping the Redis server to check the connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis DB %d: %v", db, err)
	}

	clients[db] = client

	return client, nil
}

func GetRedisClient(db int) (*redis.Client, error) {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	client, exists := clients[db]
	if !exists {
		return nil, fmt.Errorf("redis client for DB %d is not initialized. call InitRedisClient first", db)
	}
	return client, nil
}

func CloseRedisClients() {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	for db, client := range clients {
		_ = client.Close()
		delete(clients, db)
	}
}

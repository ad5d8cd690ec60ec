package adapter

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(CloseRedisClients)

	client, err := InitRedisClient(context.Background(), mr.Addr(), "", 2)
	require.NoError(t, err)

	again, err := GetRedisClient(2)
	require.NoError(t, err)
	assert.Same(t, client, again)

	_, err = GetRedisClient(3)
	assert.Error(t, err)
}

func TestInitRedisClientEmptyAddr(t *testing.T) {
	_, err := InitRedisClient(context.Background(), "", "", 0)
	assert.Error(t, err)
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client, err := NewRedisClient(server.Addr(), "", 0, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, server
}

func TestRedisClient_RateLimit(t *testing.T) {
	client, server := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := client.RateLimit(ctx, "rate_limit:test", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, wait, err := client.RateLimit(ctx, "rate_limit:test", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.True(t, wait > 0 && wait <= time.Hour)

	server.FastForward(time.Hour + time.Second)

	allowed, _, err = client.RateLimit(ctx, "rate_limit:test", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisClient_GetIntMissingKey(t *testing.T) {
	client, _ := newTestRedis(t)

	value, err := client.GetInt(context.Background(), "absent")
	require.NoError(t, err)
	assert.Equal(t, 0, value)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	addr := server.Addr()
	server.Close()

	_, err = NewRedisClient(addr, "", 0, zap.NewNop())
	assert.Error(t, err)
}

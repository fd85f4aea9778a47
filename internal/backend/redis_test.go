package backend

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisBackend) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rb, err := NewRedisBackend(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rb.Close() })

	return mr, rb
}

func TestRedisBackendGetSet(t *testing.T) {
	ctx := context.Background()
	_, rb := newTestRedis(t)

	_, found, err := rb.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rb.Set(ctx, "api_limit:abc", []byte(`{"count":1}`), time.Minute))

	value, found, err := rb.Get(ctx, "api_limit:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"count":1}`, string(value))
}

func TestRedisBackendTTL(t *testing.T) {
	ctx := context.Background()
	mr, rb := newTestRedis(t)

	require.NoError(t, rb.Set(ctx, "k", []byte("v"), 60*time.Second))
	assert.Equal(t, 60*time.Second, mr.TTL("k"))

	mr.FastForward(61 * time.Second)

	_, found, err := rb.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisBackendUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisBackend(addr, "", 0)
	assert.Error(t, err)
}

func TestRedisBackendGetErrorWhenDown(t *testing.T) {
	ctx := context.Background()
	mr, rb := newTestRedis(t)
	mr.Close()

	_, found, err := rb.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
}

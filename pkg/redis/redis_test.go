package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewClient(ctx, Config{Addr: mr.Addr(), PoolSize: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "plan:1", "cached", 0).Err())
	assert.True(t, mr.Exists("plan:1"))

	mr.Close()
	assert.ErrorContains(t, c.Ping(ctx), "redis unreachable")
	assert.NoError(t, c.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), Config{Addr: addr}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "ping redis at "+addr)
}

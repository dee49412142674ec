package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "content:table:126508", key(126508))
}

// TestRedisRoundTrip needs a server at TEST_REDIS_ADDR.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("Skipping redis test: TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, Options{Addr: addr, TTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	id := time.Now().UnixNano()
	_, ok := r.Get(ctx, id)
	assert.False(t, ok)

	r.Set(ctx, id, "food_main")
	got, ok := r.Get(ctx, id)
	assert.True(t, ok)
	assert.Equal(t, "food_main", got)

	require.NoError(t, r.rdb.Del(ctx, key(id)).Err())
}

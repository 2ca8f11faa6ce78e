package ratelimit

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRedisTestLimiter требует живой Redis в REDIS_TEST_ADDR
func newRedisTestLimiter(t *testing.T, cfg Config) *RedisLimiter {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping Redis tests")
	}

	cfg.RedisAddr = addr
	cfg.RedisPassword = os.Getenv("REDIS_TEST_PASSWORD")
	cfg.KeyPrefix = "taskflow-test:" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":"

	l, err := NewRedisLimiter(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestNewRedisLimiter_Unreachable(t *testing.T) {
	_, err := NewRedisLimiter(Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisLimiter_Take(t *testing.T) {
	l := newRedisTestLimiter(t, Config{Requests: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Take(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := l.Take(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.InDelta(t, time.Minute.Seconds(), d.RetryAfter.Seconds(), 5)

	other, err := l.Take(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys should be isolated")
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	l := newRedisTestLimiter(t, Config{Requests: 1, Window: time.Minute})
	ctx := context.Background()

	clock := newFakeClock()
	l.now = clock.Now

	d, err := l.Take(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	clock.Advance(30 * time.Second)
	d, err = l.Take(ctx, "k")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	clock.Advance(30 * time.Second)
	d, err = l.Take(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisLimiter_Reset(t *testing.T) {
	l := newRedisTestLimiter(t, Config{Requests: 1, Window: time.Minute})
	ctx := context.Background()

	_, err := l.Take(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, l.Reset(ctx, "k"))

	d, err := l.Take(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisLimiter_ClosedClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	l := NewRedisLimiterWithClient(client, Config{Requests: 1})
	require.NoError(t, l.Close())

	_, err := l.Take(context.Background(), "k")
	assert.Error(t, err)
}

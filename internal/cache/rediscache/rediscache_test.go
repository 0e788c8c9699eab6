package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	require.NoError(t, c.Delete(ctx, "k"))
	b, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, b)
}

func TestRedisCache_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "lookup:")

	require.NoError(t, c.Set(context.Background(), "CD1", []byte("x"), time.Minute))
	require.True(t, mr.Exists("lookup:CD1"))
}

func TestRedisCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)
}

func TestLocker_ExclusiveUntilReleased(t *testing.T) {
	mr := miniredis.RunT(t)
	l := NewLocker(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	unlock, err := l.Lock(context.Background(), "ship-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "ship-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLockTimeout))

	// other keys are independent
	unlock2, err := l.Lock(context.Background(), "ship-2")
	require.NoError(t, err)
	unlock2()

	unlock()
	require.False(t, mr.Exists("lock:ship-1"))

	unlock3, err := l.Lock(context.Background(), "ship-1")
	require.NoError(t, err)
	unlock3()
}

func TestLocker_ReleaseKeepsForeignToken(t *testing.T) {
	mr := miniredis.RunT(t)
	l := NewLocker(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Second)

	unlock, err := l.Lock(context.Background(), "ship-1")
	require.NoError(t, err)

	// lock expired and someone else took it
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:ship-1", "other"))

	unlock()
	v, err := mr.Get("lock:ship-1")
	require.NoError(t, err)
	require.Equal(t, "other", v)
}

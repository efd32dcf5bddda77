package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/locking"
)

func TestLocalSerializesSameKey(t *testing.T) {
	l := NewLocal(time.Second)
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "apartment:a1")
			require.NoError(t, err)
			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Empty(t, l.slots)
}

func TestLocalIndependentKeys(t *testing.T) {
	l := NewLocal(50 * time.Millisecond)
	a, err := l.Acquire(context.Background(), "apartment:a1")
	require.NoError(t, err)
	defer a()
	b, err := l.Acquire(context.Background(), "apartment:a2")
	require.NoError(t, err)
	b()
}

func TestLocalTimesOutWhenBusy(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	release, err := l.Acquire(context.Background(), "rating:a1")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "rating:a1")
	require.ErrorIs(t, err, locking.ErrNotAcquired)

	release()
	release()
	again, err := l.Acquire(context.Background(), "rating:a1")
	require.NoError(t, err)
	again()
}

func TestLocalHonoursCancellation(t *testing.T) {
	l := NewLocal(time.Second)
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, &Redis{Client: client, Prefix: "vidaview:lock:", TTL: time.Second, Wait: 100 * time.Millisecond}
}

func TestRedisAcquireAndRelease(t *testing.T) {
	mr, l := setupRedis(t)

	release, err := l.Acquire(context.Background(), "apartment:a1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("vidaview:lock:apartment:a1"))
	assert.Equal(t, time.Second, mr.TTL("vidaview:lock:apartment:a1"))

	_, err = l.Acquire(context.Background(), "apartment:a1")
	require.ErrorIs(t, err, locking.ErrNotAcquired)

	release()
	assert.False(t, mr.Exists("vidaview:lock:apartment:a1"))

	again, err := l.Acquire(context.Background(), "apartment:a1")
	require.NoError(t, err)
	again()
}

func TestRedisReleaseLeavesForeignLease(t *testing.T) {
	mr, l := setupRedis(t)

	release, err := l.Acquire(context.Background(), "apartment:a1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	other, err := l.Acquire(context.Background(), "apartment:a1")
	require.NoError(t, err)

	release()
	assert.True(t, mr.Exists("vidaview:lock:apartment:a1"))
	other()
	assert.False(t, mr.Exists("vidaview:lock:apartment:a1"))
}

func TestRedisUnavailable(t *testing.T) {
	mr, l := setupRedis(t)
	mr.Close()

	_, err := l.Acquire(context.Background(), "apartment:a1")
	require.Error(t, err)
}

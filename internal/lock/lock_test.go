package lock

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerSerialisesSameKey(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "participant-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx2, "b")
	require.NoError(t, err)
	unlockB()
}

func TestMemoryLockerContextCancel(t *testing.T) {
	locker := NewMemoryLocker()

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	require.ErrorIs(t, err, ErrNotAcquired)

	unlock()
	unlock() // double release is a no-op

	again, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()

	assert.Empty(t, locker.(*keyedMutex).locks)
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("DAILYGRIT_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, addr, "", 0)
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
		return
	}
	defer client.Close()

	locker := NewRedisLocker(client, "dailygrit:test:lock:", time.Second)
	key := "participant-" + time.Now().Format("150405.000000")

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	short, cancelShort := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelShort()
	_, err = locker.Lock(short, key)
	require.ErrorIs(t, err, ErrNotAcquired)

	unlock()

	unlock2, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerRenewsWhileHeld(t *testing.T) {
	addr := os.Getenv("DAILYGRIT_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, addr, "", 0)
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
		return
	}
	defer client.Close()

	ttl := 300 * time.Millisecond
	locker := NewRedisLocker(client, "dailygrit:test:lock:", ttl)
	key := "renew-" + time.Now().Format("150405.000000")

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	// hold well past the TTL
	time.Sleep(4 * ttl)

	short, cancelShort := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelShort()
	_, err = locker.Lock(short, key)
	require.ErrorIs(t, err, ErrNotAcquired, "renewal keeps the key alive")

	remaining, err := client.PTTL(ctx, "dailygrit:test:lock:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, ttl)

	unlock()
	unlock()

	exists, err := client.Exists(ctx, "dailygrit:test:lock:"+key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "released key is gone and renewal has stopped")

	again, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	again()
}

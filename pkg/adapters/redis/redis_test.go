package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/pixelpilot/pkg/adapters/redis"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_SharedAcrossClients(t *testing.T) {
	mr, client := newClient(t)
	other := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer other.Close()

	a := redis.NewFromClient(client)
	b := redis.NewFromClient(other)
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "mode", domain.String("loot")))
	v, ok, err := b.Get(ctx, "mode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.String("loot"), v)

	on, err := b.Toggle(ctx, "paused")
	require.NoError(t, err)
	assert.True(t, on)
	v, _, err = a.Get(ctx, "paused")
	require.NoError(t, err)
	assert.Equal(t, domain.Bool(true), v)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	require.NoError(t, store.Set(context.Background(), "k", domain.Int(1)))

	assert.True(t, mr.Exists("custom:app:state"), "Expected hash with custom prefix to exist")
	assert.Equal(t, "i:1", mr.HGet("custom:app:state", "k"))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()
	_, err := store.Increment(ctx, "hits", 1)
	require.NoError(t, err)
	assert.Equal(t, time.Second, mr.TTL(redis.DefaultPrefix+"state"))

	mr.FastForward(2 * time.Second)
	_, ok, err := store.Get(ctx, "hits")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	mr.HSet(redis.DefaultPrefix+"state", "bad", "garbage")

	store := redis.NewFromClient(client)
	_, _, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, snap, "bad")
}

func TestRedisLibrary_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunGraphRepositoryContract(t, redis.NewLibrary(client, ""))
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "desktop", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:desktop"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:desktop"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "desktop", 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(short, "desktop", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var acquired atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		unlock2, err := locker2.Lock(ctx, "desktop", 5*time.Second)
		if assert.NoError(t, err) {
			acquired.Store(true)
			assert.NoError(t, unlock2(ctx))
		}
	}()

	time.Sleep(150 * time.Millisecond)
	assert.False(t, acquired.Load(), "second holder must wait")
	require.NoError(t, unlock1(ctx))
	wg.Wait()
	assert.True(t, acquired.Load())
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlockOld, err := locker.Lock(ctx, "desktop", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	_, err = locker.Lock(ctx, "desktop", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlockOld(ctx))
	assert.True(t, mr.Exists("test:lock:desktop"), "expired holder must not release the new lock")
}

func TestRedisLocker_HoldRenewsBeforeExpiry(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()
	ttl := 300 * time.Millisecond

	lease, err := locker.Hold(ctx, "desktop", ttl)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		mr.FastForward(250 * time.Millisecond)
		require.True(t, mr.Exists("test:lock:desktop"))
		assert.Eventually(t, func() bool {
			return mr.TTL("test:lock:desktop") == ttl
		}, time.Second, 10*time.Millisecond, "renewal restores the ttl")
	}

	short, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "desktop", ttl)
	assert.ErrorIs(t, err, redis.ErrLockAcquire, "a renewed lock stays held")

	assert.NoError(t, lease.Err())
	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists("test:lock:desktop"))
}

func TestRedisLocker_HoldReportsLostLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	lease, err := locker.Hold(ctx, "desktop", 300*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, mr.Set("test:lock:desktop", "someone-else"))

	select {
	case <-lease.Lost():
	case <-time.After(time.Second):
		t.Fatal("lease was not reported lost")
	}
	assert.ErrorIs(t, lease.Err(), redis.ErrLockLost)

	require.NoError(t, lease.Release(ctx))
	v, err := mr.Get("test:lock:desktop")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v, "release leaves the new owner alone")
}

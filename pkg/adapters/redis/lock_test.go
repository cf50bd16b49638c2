package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/snk/pkg/adapters/redis"
	"github.com/aretw0/snk/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := setup(t)
	tests.LockerContractTest(t,
		redis.NewLocker(client, "test:"),
		redis.NewLocker(client, "test:"),
	)
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "/wf/.conda/abcd1234", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:/wf/.conda/abcd1234"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:/wf/.conda/abcd1234"), "Lock key should be removed after unlock")
}

func TestRedisLocker_ContentionTimesOut(t *testing.T) {
	_, client := setup(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer unlock1(ctx)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "expiring", time.Second)
	require.NoError(t, err)

	// Our lock expires and someone else takes the key.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:expiring", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:expiring")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestNewFromURL(t *testing.T) {
	mr, _ := setup(t)

	locker, err := redis.NewFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer locker.Close()

	unlock, err := locker.Lock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.DefaultPrefix+"lock:k"))
	require.NoError(t, unlock(context.Background()))

	_, err = redis.NewFromURL("://bad")
	assert.Error(t, err)
}

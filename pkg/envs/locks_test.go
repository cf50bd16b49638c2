package envs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/snk/internal/logging"
	"github.com/aretw0/snk/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressLocks_Lifecycle(t *testing.T) {
	locks := newAddressLocks(nil, time.Minute, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		err := locks.withLock(ctx, fmt.Sprintf("/prefix/%d", i), func(context.Context) error { return nil })
		require.NoError(t, err)
	}
	assert.Empty(t, locks.locks, "entries are dropped once released")
}

func TestAddressLocks_Serializes(t *testing.T) {
	locks := newAddressLocks(nil, time.Minute, logging.NewNop())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locks.withLock(ctx, "/prefix/abc", func(context.Context) error {
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
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locks.locks)
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("redis unavailable")
}

func TestAddressLocks_DistributedFailure(t *testing.T) {
	locks := newAddressLocks(failingLocker{}, time.Minute, logging.NewNop())

	called := false
	err := locks.withLock(context.Background(), "/prefix/abc", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "redis unavailable")
	assert.False(t, called)
	assert.Empty(t, locks.locks)
}

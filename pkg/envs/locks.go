package envs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/snk/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// addressLocks serializes creation per environment address. Definitions with
// identical content share an address, so two workers of the same batch can race
// on it. The optional DistributedLocker extends the exclusion to other processes.
type addressLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

func newAddressLocks(locker ports.DistributedLocker, ttl time.Duration, logger *slog.Logger) *addressLocks {
	return &addressLocks{
		locks:  make(map[string]*lockEntry),
		locker: locker,
		ttl:    ttl,
		logger: logger,
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(address) after unlocking.
func (l *addressLocks) acquire(address string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[address]
	if !exists {
		entry = &lockEntry{}
		l.locks[address] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (l *addressLocks) release(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[address]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, address)
	}
}

// withLock runs fn while holding the lock for address.
func (l *addressLocks) withLock(ctx context.Context, address string, fn func(context.Context) error) error {
	entry := l.acquire(address)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(address)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, address, l.ttl)
		if err != nil {
			return fmt.Errorf("failed to lock %s: %w", address, err)
		}
		defer func() {
			// The caller's context may already be cancelled.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				l.logger.Warn("failed to release environment lock (will expire via TTL)",
					"address", address,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

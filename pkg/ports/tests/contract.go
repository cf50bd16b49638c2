package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/snk/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies
// with ports.DistributedLocker. Each locker passed in must share one backend.
func LockerContractTest(t *testing.T, first, second ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()

	t.Run("Lock_Unlock", func(t *testing.T) {
		unlock, err := first.Lock(ctx, "contract-a", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if unlock == nil {
			t.Fatal("expected unlock func, got nil")
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}
	})

	t.Run("Contention_Blocks", func(t *testing.T) {
		unlock, err := first.Lock(ctx, "contract-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		if _, err := second.Lock(short, "contract-b", 5*time.Second); err == nil {
			t.Fatal("expected contention error while lock is held")
		}

		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}
		unlock2, err := second.Lock(ctx, "contract-b", 5*time.Second)
		if err != nil {
			t.Fatalf("expected lock after release, got %v", err)
		}
		_ = unlock2(ctx)
	})

	t.Run("Independent_Keys", func(t *testing.T) {
		u1, err := first.Lock(ctx, "contract-c1", 5*time.Second)
		if err != nil {
			t.Fatalf("lock c1: %v", err)
		}
		defer u1(ctx)

		short, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		u2, err := second.Lock(short, "contract-c2", 5*time.Second)
		if err != nil {
			t.Fatalf("distinct keys must not contend: %v", err)
		}
		_ = u2(ctx)
	})
}

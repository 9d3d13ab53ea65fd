package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupLock(t *testing.T) (*TickLock, *TickLock, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewTickLock(rdb, time.Minute), NewTickLock(rdb, time.Minute), mr
}

func TestTickLockSingleFlight(t *testing.T) {
	first, second, _ := setupLock(t)
	ctx := context.Background()

	ok, err := first.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}

	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected second acquire to fail while lock is held")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected acquire to succeed after release")
	}
}

func TestTickLockReleaseLeavesNewHolderAlone(t *testing.T) {
	first, second, mr := setupLock(t)
	ctx := context.Background()

	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatal("expected first acquire to succeed")
	}

	// Simulate TTL expiry followed by another holder taking the lock.
	mr.FastForward(2 * time.Minute)
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected acquire to succeed after expiry")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// The second holder's lock must survive the stale release.
	if ok, _ := first.Acquire(ctx); ok {
		t.Fatal("expected lock to still be held by the second holder")
	}
}

func TestTickLockReleaseWithoutAcquireIsNoop(t *testing.T) {
	first, _, _ := setupLock(t)
	if err := first.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

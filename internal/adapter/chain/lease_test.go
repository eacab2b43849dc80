package chain

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func leaseClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return s, c
}

func TestLeaseExclusivity(t *testing.T) {
	_, c := leaseClient(t)
	ctx := context.Background()

	a := NewLease(c, "ethereum-sepolia", time.Minute)
	b := NewLease(c, "ethereum-sepolia", time.Minute)

	ok, err := a.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = b.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire err: %v", err)
	}
	if ok {
		t.Fatal("second acquire succeeded while lease held")
	}

	// a different chain is an independent lease
	other := NewLease(c, "polygon-amoy", time.Minute)
	if ok, err := other.Acquire(ctx); err != nil || !ok {
		t.Fatalf("other chain acquire = (%v, %v)", ok, err)
	}
}

func TestLeaseRenewAndRelease(t *testing.T) {
	s, c := leaseClient(t)
	ctx := context.Background()

	a := NewLease(c, "ethereum-sepolia", time.Minute)
	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}
	if err := a.Renew(ctx); err != nil {
		t.Fatalf("renew: %v", err)
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if s.Exists("watcher:lease:ethereum-sepolia") {
		t.Fatal("lease key still present after release")
	}

	// renewing a released lease reports loss of ownership
	if err := a.Renew(ctx); err == nil {
		t.Fatal("renew after release should fail")
	}
}

func TestLeaseReleaseLeavesForeignOwner(t *testing.T) {
	s, c := leaseClient(t)
	ctx := context.Background()

	a := NewLease(c, "ethereum-sepolia", time.Minute)
	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	// simulate expiry plus takeover by another owner
	s.FastForward(2 * time.Minute)
	b := NewLease(c, "ethereum-sepolia", time.Minute)
	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatal("takeover acquire failed")
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if !s.Exists("watcher:lease:ethereum-sepolia") {
		t.Fatal("stale release removed the new owner's lease")
	}
	if err := a.Renew(ctx); err == nil {
		t.Fatal("stale renew should fail")
	}
}

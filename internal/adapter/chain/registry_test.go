package chain

import (
	"context"
	"testing"
	"time"

	settlementDomain "cryptolend/internal/domain/settlement"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAddressRegistryRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewAddressRegistry(c)
	events, err := reg.Subscribe(ctx, "ethereum-sepolia")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := settlementDomain.AddressEvent{
		Type:        settlementDomain.AddressAdded,
		TokenID:     "0xtoken",
		Address:     "0xabc",
		DerivedPath: "m/44'/60'/0'/0/3",
	}
	if err := reg.Publish(ctx, "ethereum-sepolia", want); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// an event on another chain's channel must not arrive here
	if err := reg.Publish(ctx, "polygon-amoy", settlementDomain.AddressEvent{
		Type: settlementDomain.AddressAdded, Address: "0xother",
	}); err != nil {
		t.Fatalf("publish other chain: %v", err)
	}

	select {
	case got := <-events:
		if got != want {
			t.Fatalf("event = %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case got := <-events:
		t.Fatalf("unexpected cross-chain event: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAddressRegistryDropsMalformedPayload(t *testing.T) {
	s := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewAddressRegistry(c)
	events, err := reg.Subscribe(ctx, "ethereum-sepolia")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := c.Publish(ctx, "watcher:addr:ethereum-sepolia", "{not json").Err(); err != nil {
		t.Fatalf("publish raw: %v", err)
	}
	good := settlementDomain.AddressEvent{Type: settlementDomain.AddressAdded, Address: "0xabc"}
	if err := reg.Publish(ctx, "ethereum-sepolia", good); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-events:
		if got != good {
			t.Fatalf("event = %+v, want %+v", got, good)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

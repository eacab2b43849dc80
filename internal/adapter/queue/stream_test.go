package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	settlementDomain "cryptolend/internal/domain/settlement"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testStream(t *testing.T) (*miniredis.Miniredis, *redis.Client, *Stream) {
	t.Helper()
	s := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	q := NewStream(c, StreamConfig{
		Stream:        "settlement:detected",
		DLQStream:     "settlement:dlq",
		Group:         "settlement",
		Consumer:      "worker-1",
		MaxDeliveries: 3,
		Block:         50 * time.Millisecond,
	})
	return s, c, q
}

func TestStreamPublishConsume(t *testing.T) {
	_, c, q := testStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	want := settlementDomain.DetectedTransaction{
		BlockchainKey:        "ethereum-sepolia",
		TokenID:              "0xtoken",
		WalletDerivationPath: "m/44'/60'/0'/0/9",
		WalletAddress:        "0xabc",
		TransactionHash:      "0xh1",
		Sender:               "0xsender",
		Amount:               "1000000",
		DetectedAt:           time.Unix(1700000000, 0).UTC(),
	}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := make(chan settlementDomain.DetectedTransaction, 1)
	go func() {
		_ = q.Run(ctx, func(ctx context.Context, dt settlementDomain.DetectedTransaction) error {
			got <- dt
			return nil
		})
	}()

	select {
	case dt := <-got:
		if dt != want {
			t.Fatalf("consumed = %+v, want %+v", dt, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	cancel()

	// handled message must end up acknowledged
	waitFor(t, func() bool {
		pend, err := c.XPending(context.Background(), "settlement:detected", "settlement").Result()
		return err == nil && pend.Count == 0
	})
}

func TestStreamFailedHandlerLeavesPending(t *testing.T) {
	_, c, q := testStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := q.Publish(ctx, settlementDomain.DetectedTransaction{TransactionHash: "0xh1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	seen := make(chan struct{}, 1)
	go func() {
		_ = q.Run(ctx, func(ctx context.Context, dt settlementDomain.DetectedTransaction) error {
			select {
			case seen <- struct{}{}:
			default:
			}
			return errors.New("db unavailable")
		})
	}()

	select {
	case <-seen:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never invoked")
	}
	cancel()

	pend, err := c.XPending(context.Background(), "settlement:detected", "settlement").Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pend.Count != 1 {
		t.Fatalf("pending = %d, want 1", pend.Count)
	}
}

func TestStreamMalformedGoesToDLQ(t *testing.T) {
	_, c, q := testStream(t)
	ctx := context.Background()

	if err := q.ensureGroup(ctx); err != nil {
		t.Fatalf("ensure group: %v", err)
	}
	id, err := c.XAdd(ctx, &redis.XAddArgs{
		Stream: "settlement:detected",
		Values: map[string]interface{}{payloadField: "{not json"},
	}).Result()
	if err != nil {
		t.Fatalf("xadd: %v", err)
	}
	res, err := c.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group: "settlement", Consumer: "worker-1",
		Streams: []string{"settlement:detected", ">"}, Count: 1,
	}).Result()
	if err != nil {
		t.Fatalf("xreadgroup: %v", err)
	}

	q.process(ctx, res[0].Messages[0], 1, func(ctx context.Context, dt settlementDomain.DetectedTransaction) error {
		t.Fatal("handler must not run for malformed payload")
		return nil
	})

	dlqLen, err := c.XLen(ctx, "settlement:dlq").Result()
	if err != nil || dlqLen != 1 {
		t.Fatalf("dlq len = %d (err %v), want 1", dlqLen, err)
	}
	msgs, _ := c.XRange(ctx, "settlement:dlq", "-", "+").Result()
	if msgs[0].Values["source_id"] != id {
		t.Fatalf("dlq source_id = %v, want %s", msgs[0].Values["source_id"], id)
	}
	pend, _ := c.XPending(ctx, "settlement:detected", "settlement").Result()
	if pend.Count != 0 {
		t.Fatalf("malformed message still pending: %d", pend.Count)
	}
}

func TestStreamMaxDeliveriesDeadLetters(t *testing.T) {
	_, c, q := testStream(t)
	ctx := context.Background()

	if err := q.ensureGroup(ctx); err != nil {
		t.Fatalf("ensure group: %v", err)
	}
	if err := q.Publish(ctx, settlementDomain.DetectedTransaction{TransactionHash: "0xh1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	res, err := c.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group: "settlement", Consumer: "worker-1",
		Streams: []string{"settlement:detected", ">"}, Count: 1,
	}).Result()
	if err != nil {
		t.Fatalf("xreadgroup: %v", err)
	}

	handled := false
	q.process(ctx, res[0].Messages[0], 4, func(ctx context.Context, dt settlementDomain.DetectedTransaction) error {
		handled = true
		return nil
	})
	if handled {
		t.Fatal("handler ran past the delivery limit")
	}

	dlqLen, _ := c.XLen(ctx, "settlement:dlq").Result()
	if dlqLen != 1 {
		t.Fatalf("dlq len = %d, want 1", dlqLen)
	}
	pend, _ := c.XPending(ctx, "settlement:detected", "settlement").Result()
	if pend.Count != 0 {
		t.Fatalf("dead-lettered message still pending: %d", pend.Count)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

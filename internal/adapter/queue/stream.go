package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	settlementDomain "cryptolend/internal/domain/settlement"
	"cryptolend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const payloadField = "payload"

type StreamConfig struct {
	Stream        string
	DLQStream     string
	Group         string
	Consumer      string
	MaxDeliveries int64         // default 5
	Block         time.Duration // default 5s
	ClaimMinIdle  time.Duration // default 1m
	BatchSize     int64         // default 16
}

func (c *StreamConfig) applyDefaults() {
	if c.MaxDeliveries <= 0 {
		c.MaxDeliveries = 5
	}
	if c.Block <= 0 {
		c.Block = 5 * time.Second
	}
	if c.ClaimMinIdle <= 0 {
		c.ClaimMinIdle = time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 16
	}
}

// Stream moves detected transactions from the chain watchers to the
// settlement consumer over a redis stream with a consumer group.
// Delivery is at-least-once; the settlement side dedupes by payment hash.
type Stream struct {
	rdb redis.UniversalClient
	cfg StreamConfig
}

func NewStream(rdb redis.UniversalClient, cfg StreamConfig) *Stream {
	cfg.applyDefaults()
	return &Stream{rdb: rdb, cfg: cfg}
}

func (s *Stream) Publish(ctx context.Context, dt settlementDomain.DetectedTransaction) error {
	b, err := json.Marshal(dt)
	if err != nil {
		return fmt.Errorf("marshal detected transaction: %w", err)
	}
	return s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Stream,
		Values: map[string]interface{}{payloadField: string(b)},
	}).Err()
}

// Handler processes one detected transaction. A nil return acknowledges
// the message; an error leaves it pending for redelivery.
type Handler func(ctx context.Context, dt settlementDomain.DetectedTransaction) error

// Run consumes until ctx is cancelled. Messages that exhaust
// MaxDeliveries are copied to the DLQ stream and acknowledged.
func (s *Stream) Run(ctx context.Context, handle Handler) error {
	if err := s.ensureGroup(ctx); err != nil {
		return err
	}
	logger.Infof("queue[%s]: consumer %s started", s.cfg.Stream, s.cfg.Consumer)
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.reclaim(ctx, handle)

		res, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.cfg.Group,
			Consumer: s.cfg.Consumer,
			Streams:  []string{s.cfg.Stream, ">"},
			Count:    s.cfg.BatchSize,
			Block:    s.cfg.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Warnf("queue[%s]: read: %v", s.cfg.Stream, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		for _, stream := range res {
			for _, msg := range stream.Messages {
				s.process(ctx, msg, 1, handle)
			}
		}
	}
}

func (s *Stream) ensureGroup(ctx context.Context) error {
	err := s.rdb.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", s.cfg.Group, s.cfg.Stream, err)
	}
	return nil
}

// reclaim takes over messages another consumer left pending and retries
// them under this consumer.
func (s *Stream) reclaim(ctx context.Context, handle Handler) {
	msgs, _, err := s.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   s.cfg.Stream,
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		MinIdle:  s.cfg.ClaimMinIdle,
		Start:    "0-0",
		Count:    s.cfg.BatchSize,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warnf("queue[%s]: autoclaim: %v", s.cfg.Stream, err)
		}
		return
	}
	for _, msg := range msgs {
		s.process(ctx, msg, s.deliveryCount(ctx, msg.ID), handle)
	}
}

func (s *Stream) deliveryCount(ctx context.Context, id string) int64 {
	pend, err := s.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: s.cfg.Stream,
		Group:  s.cfg.Group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil || len(pend) == 0 {
		return 1
	}
	return pend[0].RetryCount
}

func (s *Stream) process(ctx context.Context, msg redis.XMessage, deliveries int64, handle Handler) {
	payload, _ := msg.Values[payloadField].(string)

	var dt settlementDomain.DetectedTransaction
	if err := json.Unmarshal([]byte(payload), &dt); err != nil {
		logger.Errorf("queue[%s]: malformed message %s: %v", s.cfg.Stream, msg.ID, err)
		s.deadLetter(ctx, msg, "malformed payload")
		return
	}

	if deliveries > s.cfg.MaxDeliveries {
		logger.Errorf("queue[%s]: message %s exceeded %d deliveries, dead-lettering", s.cfg.Stream, msg.ID, s.cfg.MaxDeliveries)
		s.deadLetter(ctx, msg, "max deliveries exceeded")
		return
	}

	if err := handle(ctx, dt); err != nil {
		logger.Warnf("queue[%s]: handle %s (tx %s): %v", s.cfg.Stream, msg.ID, dt.TransactionHash, err)
		return
	}
	s.ack(ctx, msg.ID)
}

func (s *Stream) deadLetter(ctx context.Context, msg redis.XMessage, reason string) {
	values := map[string]interface{}{
		"reason":    reason,
		"source_id": msg.ID,
	}
	if payload, ok := msg.Values[payloadField]; ok {
		values[payloadField] = payload
	}
	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{Stream: s.cfg.DLQStream, Values: values}).Err(); err != nil {
		logger.Errorf("queue[%s]: dead-letter %s: %v", s.cfg.Stream, msg.ID, err)
		return
	}
	s.ack(ctx, msg.ID)
}

func (s *Stream) ack(ctx context.Context, id string) {
	if err := s.rdb.XAck(ctx, s.cfg.Stream, s.cfg.Group, id).Err(); err != nil {
		logger.Warnf("queue[%s]: ack %s: %v", s.cfg.Stream, id, err)
	}
}

package chain

import (
	"context"
	"encoding/json"
	"fmt"

	settlementDomain "cryptolend/internal/domain/settlement"
	"cryptolend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// AddressRegistry carries AddressAdded/AddressRemoved commands to the
// per-chain watchers over redis pub/sub.
type AddressRegistry struct {
	rdb redis.UniversalClient
}

func NewAddressRegistry(rdb redis.UniversalClient) *AddressRegistry {
	return &AddressRegistry{rdb: rdb}
}

func channelFor(blockchainKey string) string { return "watcher:addr:" + blockchainKey }

func (r *AddressRegistry) Publish(ctx context.Context, blockchainKey string, ev settlementDomain.AddressEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal address event: %w", err)
	}
	return r.rdb.Publish(ctx, channelFor(blockchainKey), b).Err()
}

// Subscribe delivers address events for one chain until ctx is done.
// Malformed payloads are logged and dropped.
func (r *AddressRegistry) Subscribe(ctx context.Context, blockchainKey string) (<-chan settlementDomain.AddressEvent, error) {
	sub := r.rdb.Subscribe(ctx, channelFor(blockchainKey))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channelFor(blockchainKey), err)
	}

	out := make(chan settlementDomain.AddressEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev settlementDomain.AddressEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.Warnf("address registry: bad payload on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

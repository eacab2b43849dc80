package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	invoiceDomain "cryptolend/internal/domain/invoice"
	"cryptolend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "invoices:"

// ActiveCache is the read-optimized index of pending invoices, one redis
// hash per chain keyed by lowercase wallet address. It is rebuilt
// periodically; the matcher re-validates the authoritative row before any
// side effect, so staleness can only delay a match, never corrupt one.
type ActiveCache struct {
	rdb      redis.UniversalClient
	invoices invoiceDomain.Repository
	pageSize int
}

func NewActiveCache(rdb redis.UniversalClient, r invoiceDomain.Repository) *ActiveCache {
	return &ActiveCache{rdb: rdb, invoices: r, pageSize: 200}
}

func cacheKey(blockchainKey string) string { return cachePrefix + blockchainKey }

// Refresh rebuilds the whole index from the pending invoices.
func (c *ActiveCache) Refresh(ctx context.Context) error {
	byChain := make(map[string]map[string]string)
	for offset := 0; ; offset += c.pageSize {
		page, err := c.invoices.ListPending(ctx, offset, c.pageSize)
		if err != nil {
			return fmt.Errorf("list pending invoices: %w", err)
		}
		for i := range page {
			inv := &page[i]
			b, err := json.Marshal(inv)
			if err != nil {
				logger.Warnf("invoice cache: marshal %d: %v", inv.ID, err)
				continue
			}
			chain := inv.CurrencyBlockchainKey
			if byChain[chain] == nil {
				byChain[chain] = make(map[string]string)
			}
			byChain[chain][strings.ToLower(inv.WalletAddress)] = string(b)
		}
		if len(page) < c.pageSize {
			break
		}
	}

	// drop hashes for chains with no pending invoices left
	existing, err := c.rdb.Keys(ctx, cachePrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	pipe := c.rdb.TxPipeline()
	for _, key := range existing {
		if _, ok := byChain[strings.TrimPrefix(key, cachePrefix)]; !ok {
			pipe.Del(ctx, key)
		}
	}
	for chain, entries := range byChain {
		key := cacheKey(chain)
		pipe.Del(ctx, key)
		fields := make(map[string]interface{}, len(entries))
		for addr, payload := range entries {
			fields[addr] = payload
		}
		pipe.HSet(ctx, key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild invoice cache: %w", err)
	}
	return nil
}

// Lookup returns the cached pending invoice for (chain, address), if any.
func (c *ActiveCache) Lookup(ctx context.Context, blockchainKey, address string) (*invoiceDomain.Invoice, bool, error) {
	raw, err := c.rdb.HGet(ctx, cacheKey(blockchainKey), strings.ToLower(address)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("invoice cache lookup: %w", err)
	}
	var inv invoiceDomain.Invoice
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		return nil, false, fmt.Errorf("invoice cache decode: %w", err)
	}
	return &inv, true, nil
}

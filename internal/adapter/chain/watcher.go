package chain

import (
	"context"
	"strings"
	"sync"
	"time"

	settlementDomain "cryptolend/internal/domain/settlement"
	"cryptolend/pkg/logger"
)

// Publisher hands detected transactions to the settlement queue.
type Publisher interface {
	Publish(ctx context.Context, dt settlementDomain.DetectedTransaction) error
}

// Registry delivers watched-address updates for one chain.
type Registry interface {
	Subscribe(ctx context.Context, blockchainKey string) (<-chan settlementDomain.AddressEvent, error)
}

// Liveness is the per-chain watcher lease.
type Liveness interface {
	Acquire(ctx context.Context) (bool, error)
	Renew(ctx context.Context) error
	Release(ctx context.Context) error
	TTL() time.Duration
}

type watchedEntry struct {
	derivedPath string
}

type WatcherOptions struct {
	PollInterval  time.Duration // default 10s
	CallTimeout   time.Duration // default 15s
	Confirmations uint64
	MaxBackoff    time.Duration // default 2m
}

// Watcher is the long-lived per-chain detection loop. It owns an in-memory
// watched-address set and emits a DetectedTransaction for every transfer
// whose destination is watched.
type Watcher struct {
	blockchainKey string
	provider      Provider
	lease         Liveness
	registry      Registry
	queue         Publisher
	opt           WatcherOptions

	mu sync.RWMutex
	// normalized address -> tokenID -> entry
	watched map[string]map[string]watchedEntry

	lastHeight uint64
	failures   int
	skipUntil  time.Time
}

func NewWatcher(blockchainKey string, provider Provider, lease Liveness, registry Registry, queue Publisher, opt WatcherOptions) *Watcher {
	if opt.PollInterval <= 0 {
		opt.PollInterval = 10 * time.Second
	}
	if opt.CallTimeout <= 0 {
		opt.CallTimeout = 15 * time.Second
	}
	if opt.MaxBackoff <= 0 {
		opt.MaxBackoff = 2 * time.Minute
	}
	return &Watcher{
		blockchainKey: blockchainKey,
		provider:      provider,
		lease:         lease,
		registry:      registry,
		queue:         queue,
		opt:           opt,
		watched:       make(map[string]map[string]watchedEntry),
	}
}

// Run blocks until ctx is cancelled or the watcher halts itself. When the
// chain's lease is already held elsewhere it logs and returns without
// starting a duplicate loop.
func (w *Watcher) Run(ctx context.Context) error {
	ok, err := w.lease.Acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warnf("watcher[%s]: lease already held, not starting", w.blockchainKey)
		return nil
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.lease.Release(releaseCtx); err != nil {
			logger.Warnf("watcher[%s]: release lease: %v", w.blockchainKey, err)
		}
	}()

	events, err := w.registry.Subscribe(ctx, w.blockchainKey)
	if err != nil {
		return err
	}

	renew := time.NewTicker(w.lease.TTL() / 3)
	defer renew.Stop()
	poll := time.NewTicker(w.opt.PollInterval)
	defer poll.Stop()

	logger.Infof("watcher[%s]: started", w.blockchainKey)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("watcher[%s]: stopping", w.blockchainKey)
			return nil
		case ev, open := <-events:
			if !open {
				return nil
			}
			w.applyAddressEvent(ev)
		case <-renew.C:
			if err := w.lease.Renew(ctx); err != nil {
				// lost exclusivity; halt without touching sibling watchers
				logger.Errorf("watcher[%s]: %v, halting", w.blockchainKey, err)
				return err
			}
		case <-poll.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) applyAddressEvent(ev settlementDomain.AddressEvent) {
	addr := strings.ToLower(ev.Address)
	w.mu.Lock()
	defer w.mu.Unlock()
	switch ev.Type {
	case settlementDomain.AddressAdded:
		if w.watched[addr] == nil {
			w.watched[addr] = make(map[string]watchedEntry)
		}
		w.watched[addr][strings.ToLower(ev.TokenID)] = watchedEntry{derivedPath: ev.DerivedPath}
		logger.Debugf("watcher[%s]: watching %s token=%q", w.blockchainKey, addr, ev.TokenID)
	case settlementDomain.AddressRemoved:
		if tokens := w.watched[addr]; tokens != nil {
			delete(tokens, strings.ToLower(ev.TokenID))
			if len(tokens) == 0 {
				delete(w.watched, addr)
			}
		}
	default:
		logger.Warnf("watcher[%s]: unknown address event %q", w.blockchainKey, ev.Type)
	}
}

func (w *Watcher) lookup(address, tokenID string) (watchedEntry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tokens, ok := w.watched[strings.ToLower(address)]
	if !ok {
		return watchedEntry{}, false
	}
	e, ok := tokens[strings.ToLower(tokenID)]
	return e, ok
}

// WatchedCount reports the number of watched (address, token) pairs.
func (w *Watcher) WatchedCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, tokens := range w.watched {
		n += len(tokens)
	}
	return n
}

func (w *Watcher) poll(ctx context.Context) {
	if time.Now().Before(w.skipUntil) {
		return
	}

	latest, err := w.timeBound(ctx, w.provider.LatestHeight)
	if err != nil {
		w.backoff("latest height", err)
		return
	}
	confirmed := latest
	if w.opt.Confirmations > 0 {
		if latest < w.opt.Confirmations {
			return
		}
		confirmed = latest - w.opt.Confirmations
	}

	if w.lastHeight == 0 {
		// first cycle: start at the current tip, no historical backfill
		w.lastHeight = confirmed
		w.failures = 0
		return
	}

	for h := w.lastHeight + 1; h <= confirmed; h++ {
		if ctx.Err() != nil {
			return
		}
		callCtx, cancel := context.WithTimeout(ctx, w.opt.CallTimeout)
		transfers, err := w.provider.BlockTransfers(callCtx, h)
		cancel()
		if err != nil {
			w.backoff("block transfers", err)
			return
		}
		if !w.emit(ctx, h, transfers) {
			return
		}
		w.lastHeight = h
	}
	w.failures = 0
}

// emit publishes matching transfers; false means the block must be
// re-scanned next cycle.
func (w *Watcher) emit(ctx context.Context, height uint64, transfers []Transfer) bool {
	for _, t := range transfers {
		entry, ok := w.lookup(t.To, t.TokenID)
		if !ok {
			continue
		}
		dt := settlementDomain.DetectedTransaction{
			BlockchainKey:        w.blockchainKey,
			TokenID:              strings.ToLower(t.TokenID),
			WalletDerivationPath: entry.derivedPath,
			WalletAddress:        strings.ToLower(t.To),
			TransactionHash:      t.TxHash,
			Sender:               t.From,
			Amount:               t.Amount,
			DetectedAt:           t.Timestamp,
		}
		if err := w.queue.Publish(ctx, dt); err != nil {
			w.backoff("publish", err)
			return false
		}
		logger.Infof("watcher[%s]: detected %s -> %s amount=%s block=%d", w.blockchainKey, t.TxHash, dt.WalletAddress, t.Amount, height)
	}
	return true
}

func (w *Watcher) timeBound(ctx context.Context, fn func(context.Context) (uint64, error)) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.opt.CallTimeout)
	defer cancel()
	return fn(callCtx)
}

func (w *Watcher) backoff(op string, err error) {
	w.failures++
	delay := w.opt.PollInterval * (1 << min(w.failures, 4))
	if delay > w.opt.MaxBackoff {
		delay = w.opt.MaxBackoff
	}
	w.skipUntil = time.Now().Add(delay)
	logger.Warnf("watcher[%s]: %s: %v (retry in %s)", w.blockchainKey, op, err, delay)
}

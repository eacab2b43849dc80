package chain

import (
	"context"
	"time"
)

// Transfer is one on-chain value movement inside a block, already reduced
// to what settlement needs. TokenID is empty for native-coin transfers.
type Transfer struct {
	TokenID   string
	From      string
	To        string
	TxHash    string
	Amount    string
	Timestamp time.Time
}

// Provider reads one blockchain. Implementations must respect ctx
// cancellation; every call the watcher makes is individually time-bounded.
type Provider interface {
	LatestHeight(ctx context.Context) (uint64, error)
	// BlockTransfers returns all transfers in the block at height.
	BlockTransfers(ctx context.Context, height uint64) ([]Transfer, error)
	IsContractAddress(ctx context.Context, address string) (bool, error)
}

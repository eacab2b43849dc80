package account

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByOwner(ctx context.Context, userID, blockchainKey, tokenID string, accountType Type) (*Account, error)
	AppendEntry(ctx context.Context, e *MutationEntry) error
	// SumEntries returns the derived balance as a signed integer string.
	SumEntries(ctx context.Context, accountID uint64) (string, error)
	// ListEntries pages entries ordered by mutation date descending and
	// returns the total number of entries for the account.
	ListEntries(ctx context.Context, accountID uint64, offset, limit int) ([]MutationEntry, int64, error)
}

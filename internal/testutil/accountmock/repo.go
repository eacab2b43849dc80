package accountmock

import (
	"context"

	"cryptolend/internal/domain/account"
)

// Repo is a function-backed account.Repository for usecase tests.
type Repo struct {
	CreateFn      func(ctx context.Context, a *account.Account) error
	GetByOwnerFn  func(ctx context.Context, userID, blockchainKey, tokenID string, accountType account.Type) (*account.Account, error)
	AppendEntryFn func(ctx context.Context, e *account.MutationEntry) error
	SumEntriesFn  func(ctx context.Context, accountID uint64) (string, error)
	ListEntriesFn func(ctx context.Context, accountID uint64, offset, limit int) ([]account.MutationEntry, int64, error)
}

func (m *Repo) Create(ctx context.Context, a *account.Account) error {
	return m.CreateFn(ctx, a)
}

func (m *Repo) GetByOwner(ctx context.Context, userID, blockchainKey, tokenID string, accountType account.Type) (*account.Account, error) {
	return m.GetByOwnerFn(ctx, userID, blockchainKey, tokenID, accountType)
}

func (m *Repo) AppendEntry(ctx context.Context, e *account.MutationEntry) error {
	return m.AppendEntryFn(ctx, e)
}

func (m *Repo) SumEntries(ctx context.Context, accountID uint64) (string, error) {
	return m.SumEntriesFn(ctx, accountID)
}

func (m *Repo) ListEntries(ctx context.Context, accountID uint64, offset, limit int) ([]account.MutationEntry, int64, error) {
	return m.ListEntriesFn(ctx, accountID, offset, limit)
}

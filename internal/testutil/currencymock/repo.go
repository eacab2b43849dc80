package currencymock

import (
	"context"

	"cryptolend/internal/domain/currency"
)

// Repo is a function-backed currency.Repository for usecase tests.
type Repo struct {
	CreateFn          func(ctx context.Context, c *currency.Currency) error
	GetByChainTokenFn func(ctx context.Context, blockchainKey, tokenID string) (*currency.Currency, error)
	ListFn            func(ctx context.Context) ([]currency.Currency, error)
}

func (m *Repo) Create(ctx context.Context, c *currency.Currency) error {
	return m.CreateFn(ctx, c)
}

func (m *Repo) GetByChainToken(ctx context.Context, blockchainKey, tokenID string) (*currency.Currency, error) {
	return m.GetByChainTokenFn(ctx, blockchainKey, tokenID)
}

func (m *Repo) List(ctx context.Context) ([]currency.Currency, error) {
	return m.ListFn(ctx)
}

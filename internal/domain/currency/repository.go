package currency

import "context"

type Repository interface {
	Create(ctx context.Context, c *Currency) error
	GetByChainToken(ctx context.Context, blockchainKey, tokenID string) (*Currency, error)
	List(ctx context.Context) ([]Currency, error)
}

package platform

import (
	"context"
	"time"
)

type Repository interface {
	PutConfig(ctx context.Context, c *Config) error
	// LatestConfig returns the most recent config with effective_date <= asOf.
	LatestConfig(ctx context.Context, asOf time.Time) (*Config, error)

	RecordRate(ctx context.Context, r *ExchangeRate) error
	GetRateByID(ctx context.Context, id uint64) (*ExchangeRate, error)
	// LatestRate returns the most recent observation for the pair with
	// source_date <= asOf.
	LatestRate(ctx context.Context, blockchainKey, base, quote string, asOf time.Time) (*ExchangeRate, error)
}

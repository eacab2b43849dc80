package platformmock

import (
	"context"
	"time"

	"cryptolend/internal/domain/platform"
)

// Repo is a function-backed platform.Repository for usecase tests.
type Repo struct {
	PutConfigFn    func(ctx context.Context, c *platform.Config) error
	LatestConfigFn func(ctx context.Context, asOf time.Time) (*platform.Config, error)
	RecordRateFn   func(ctx context.Context, r *platform.ExchangeRate) error
	GetRateByIDFn  func(ctx context.Context, id uint64) (*platform.ExchangeRate, error)
	LatestRateFn   func(ctx context.Context, blockchainKey, base, quote string, asOf time.Time) (*platform.ExchangeRate, error)
}

func (m *Repo) PutConfig(ctx context.Context, c *platform.Config) error {
	return m.PutConfigFn(ctx, c)
}

func (m *Repo) LatestConfig(ctx context.Context, asOf time.Time) (*platform.Config, error) {
	return m.LatestConfigFn(ctx, asOf)
}

func (m *Repo) RecordRate(ctx context.Context, r *platform.ExchangeRate) error {
	return m.RecordRateFn(ctx, r)
}

func (m *Repo) GetRateByID(ctx context.Context, id uint64) (*platform.ExchangeRate, error) {
	return m.GetRateByIDFn(ctx, id)
}

func (m *Repo) LatestRate(ctx context.Context, blockchainKey, base, quote string, asOf time.Time) (*platform.ExchangeRate, error) {
	return m.LatestRateFn(ctx, blockchainKey, base, quote, asOf)
}

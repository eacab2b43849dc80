package mysql

import (
	"context"
	"errors"
	"time"

	platformDomain "cryptolend/internal/domain/platform"

	"gorm.io/gorm"
)

type PlatformRepository struct{ db *gorm.DB }

func NewPlatformRepository(db *gorm.DB) *PlatformRepository { return &PlatformRepository{db: db} }

func (r *PlatformRepository) PutConfig(ctx context.Context, c *platformDomain.Config) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PlatformRepository) LatestConfig(ctx context.Context, asOf time.Time) (*platformDomain.Config, error) {
	out, err := latestAtOrBefore[platformDomain.Config](ctx, r.db, "effective_date", asOf)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformDomain.ErrNoConfig
	}
	return out, err
}

func (r *PlatformRepository) RecordRate(ctx context.Context, rate *platformDomain.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *PlatformRepository) GetRateByID(ctx context.Context, id uint64) (*platformDomain.ExchangeRate, error) {
	var out platformDomain.ExchangeRate
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *PlatformRepository) LatestRate(ctx context.Context, blockchainKey, base, quote string, asOf time.Time) (*platformDomain.ExchangeRate, error) {
	tx := r.db.Where("blockchain_key = ? AND base_symbol = ? AND quote_symbol = ?", blockchainKey, base, quote)
	out, err := latestAtOrBefore[platformDomain.ExchangeRate](ctx, tx, "source_date", asOf)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformDomain.ErrNoRate
	}
	return out, err
}

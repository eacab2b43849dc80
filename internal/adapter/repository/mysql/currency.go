package mysql

import (
	"context"

	currencyDomain "cryptolend/internal/domain/currency"

	"gorm.io/gorm"
)

type CurrencyRepository struct{ db *gorm.DB }

func NewCurrencyRepository(db *gorm.DB) *CurrencyRepository { return &CurrencyRepository{db: db} }

func (r *CurrencyRepository) Create(ctx context.Context, c *currencyDomain.Currency) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CurrencyRepository) GetByChainToken(ctx context.Context, blockchainKey, tokenID string) (*currencyDomain.Currency, error) {
	var out currencyDomain.Currency
	res := r.db.WithContext(ctx).
		Where("blockchain_key = ? AND token_id = ?", blockchainKey, tokenID).
		First(&out)
	return &out, res.Error
}

func (r *CurrencyRepository) List(ctx context.Context) ([]currencyDomain.Currency, error) {
	var out []currencyDomain.Currency
	res := r.db.WithContext(ctx).Order("blockchain_key, token_id").Find(&out)
	return out, res.Error
}

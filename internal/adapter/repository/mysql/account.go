package mysql

import (
	"context"

	accountDomain "cryptolend/internal/domain/account"
	"cryptolend/pkg/money"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByOwner(ctx context.Context, userID, blockchainKey, tokenID string, accountType accountDomain.Type) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND currency_blockchain_key = ? AND currency_token_id = ? AND account_type = ?",
			userID, blockchainKey, tokenID, accountType).
		First(&out)
	return &out, res.Error
}

func (r *AccountRepository) AppendEntry(ctx context.Context, e *accountDomain.MutationEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// SumEntries derives the balance in Go so arbitrary-precision integer
// strings never pass through SQL numeric types.
func (r *AccountRepository) SumEntries(ctx context.Context, accountID uint64) (string, error) {
	var amounts []string
	res := r.db.WithContext(ctx).
		Model(&accountDomain.MutationEntry{}).
		Where("account_id = ?", accountID).
		Pluck("amount", &amounts)
	if res.Error != nil {
		return "", res.Error
	}
	total := money.Zero
	for _, a := range amounts {
		sum, err := money.Add(total, a)
		if err != nil {
			return "", err
		}
		total = sum
	}
	return total, nil
}

func (r *AccountRepository) ListEntries(ctx context.Context, accountID uint64, offset, limit int) ([]accountDomain.MutationEntry, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&accountDomain.MutationEntry{}).
		Where("account_id = ?", accountID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []accountDomain.MutationEntry
	res := q.Order("mutation_date DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&out)
	return out, total, res.Error
}

package mysql

import (
	"context"

	withdrawalDomain "cryptolend/internal/domain/withdrawal"

	"gorm.io/gorm"
)

type WithdrawalRepository struct{ db *gorm.DB }

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) CreateBeneficiary(ctx context.Context, b *withdrawalDomain.Beneficiary) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *WithdrawalRepository) GetBeneficiaryByID(ctx context.Context, beneficiaryID string) (*withdrawalDomain.Beneficiary, error) {
	var out withdrawalDomain.Beneficiary
	res := r.db.WithContext(ctx).Where("beneficiary_id = ?", beneficiaryID).First(&out)
	return &out, res.Error
}

func (r *WithdrawalRepository) GetBeneficiaryByNumericID(ctx context.Context, id uint64) (*withdrawalDomain.Beneficiary, error) {
	var out withdrawalDomain.Beneficiary
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *withdrawalDomain.Withdrawal) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WithdrawalRepository) GetByWithdrawalID(ctx context.Context, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	var out withdrawalDomain.Withdrawal
	res := r.db.WithContext(ctx).Where("withdrawal_id = ?", withdrawalID).First(&out)
	return &out, res.Error
}

func (r *WithdrawalRepository) GetByWithdrawalIDForUpdate(ctx context.Context, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	var out withdrawalDomain.Withdrawal
	res := forUpdate(r.db.WithContext(ctx)).
		Where("withdrawal_id = ?", withdrawalID).
		First(&out)
	return &out, res.Error
}

func (r *WithdrawalRepository) Save(ctx context.Context, w *withdrawalDomain.Withdrawal) error {
	return r.db.WithContext(ctx).Save(w).Error
}

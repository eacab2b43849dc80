package withdrawalmock

import (
	"context"

	"cryptolend/internal/domain/withdrawal"
)

// Repo is a function-backed withdrawal.Repository for usecase tests.
type Repo struct {
	CreateBeneficiaryFn          func(ctx context.Context, b *withdrawal.Beneficiary) error
	GetBeneficiaryByIDFn         func(ctx context.Context, beneficiaryID string) (*withdrawal.Beneficiary, error)
	GetBeneficiaryByNumericIDFn  func(ctx context.Context, id uint64) (*withdrawal.Beneficiary, error)
	CreateFn                     func(ctx context.Context, w *withdrawal.Withdrawal) error
	GetByWithdrawalIDFn          func(ctx context.Context, withdrawalID string) (*withdrawal.Withdrawal, error)
	GetByWithdrawalIDForUpdateFn func(ctx context.Context, withdrawalID string) (*withdrawal.Withdrawal, error)
	SaveFn                       func(ctx context.Context, w *withdrawal.Withdrawal) error
}

func (m *Repo) CreateBeneficiary(ctx context.Context, b *withdrawal.Beneficiary) error {
	return m.CreateBeneficiaryFn(ctx, b)
}

func (m *Repo) GetBeneficiaryByID(ctx context.Context, beneficiaryID string) (*withdrawal.Beneficiary, error) {
	return m.GetBeneficiaryByIDFn(ctx, beneficiaryID)
}

func (m *Repo) GetBeneficiaryByNumericID(ctx context.Context, id uint64) (*withdrawal.Beneficiary, error) {
	return m.GetBeneficiaryByNumericIDFn(ctx, id)
}

func (m *Repo) Create(ctx context.Context, w *withdrawal.Withdrawal) error {
	return m.CreateFn(ctx, w)
}

func (m *Repo) GetByWithdrawalID(ctx context.Context, withdrawalID string) (*withdrawal.Withdrawal, error) {
	return m.GetByWithdrawalIDFn(ctx, withdrawalID)
}

func (m *Repo) GetByWithdrawalIDForUpdate(ctx context.Context, withdrawalID string) (*withdrawal.Withdrawal, error) {
	return m.GetByWithdrawalIDForUpdateFn(ctx, withdrawalID)
}

func (m *Repo) Save(ctx context.Context, w *withdrawal.Withdrawal) error {
	return m.SaveFn(ctx, w)
}

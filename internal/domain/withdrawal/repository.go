package withdrawal

import "context"

type Repository interface {
	CreateBeneficiary(ctx context.Context, b *Beneficiary) error
	GetBeneficiaryByID(ctx context.Context, beneficiaryID string) (*Beneficiary, error)
	GetBeneficiaryByNumericID(ctx context.Context, id uint64) (*Beneficiary, error)

	Create(ctx context.Context, w *Withdrawal) error
	GetByWithdrawalID(ctx context.Context, withdrawalID string) (*Withdrawal, error)
	GetByWithdrawalIDForUpdate(ctx context.Context, withdrawalID string) (*Withdrawal, error)
	Save(ctx context.Context, w *Withdrawal) error
}

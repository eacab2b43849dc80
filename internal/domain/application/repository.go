package application

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	GetByID(ctx context.Context, id uint64) (*LoanApplication, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*LoanApplication, error)
	GetByCollateralInvoiceIDForUpdate(ctx context.Context, invoiceID int64) (*LoanApplication, error)
	Save(ctx context.Context, a *LoanApplication) error
	ListExpiring(ctx context.Context, asOf time.Time, limit int) ([]LoanApplication, error)
}

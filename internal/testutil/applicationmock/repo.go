package applicationmock

import (
	"context"
	"time"

	"cryptolend/internal/domain/application"
)

// Repo is a function-backed application.Repository for usecase tests.
type Repo struct {
	CreateFn                            func(ctx context.Context, a *application.LoanApplication) error
	GetByIDFn                           func(ctx context.Context, id uint64) (*application.LoanApplication, error)
	GetByIDForUpdateFn                  func(ctx context.Context, id uint64) (*application.LoanApplication, error)
	GetByCollateralInvoiceIDForUpdateFn func(ctx context.Context, invoiceID int64) (*application.LoanApplication, error)
	SaveFn                              func(ctx context.Context, a *application.LoanApplication) error
	ListExpiringFn                      func(ctx context.Context, asOf time.Time, limit int) ([]application.LoanApplication, error)
}

func (m *Repo) Create(ctx context.Context, a *application.LoanApplication) error {
	return m.CreateFn(ctx, a)
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*application.LoanApplication, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*application.LoanApplication, error) {
	return m.GetByIDForUpdateFn(ctx, id)
}

func (m *Repo) GetByCollateralInvoiceIDForUpdate(ctx context.Context, invoiceID int64) (*application.LoanApplication, error) {
	return m.GetByCollateralInvoiceIDForUpdateFn(ctx, invoiceID)
}

func (m *Repo) Save(ctx context.Context, a *application.LoanApplication) error {
	return m.SaveFn(ctx, a)
}

func (m *Repo) ListExpiring(ctx context.Context, asOf time.Time, limit int) ([]application.LoanApplication, error) {
	return m.ListExpiringFn(ctx, asOf, limit)
}

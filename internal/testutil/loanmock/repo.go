package loanmock

import (
	"context"

	"cryptolend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// Repo is a function-backed loan.Repository for usecase tests.
type Repo struct {
	CreateFn                 func(ctx context.Context, l *loan.Loan) error
	GetByIDFn                func(ctx context.Context, id uint64) (*loan.Loan, error)
	GetByApplicationIDFn     func(ctx context.Context, applicationID uint64) (*loan.Loan, error)
	GetByIDForUpdateFn       func(ctx context.Context, id uint64) (*loan.Loan, error)
	SaveFn                   func(ctx context.Context, l *loan.Loan) error
	UpsertValuationFn        func(ctx context.Context, v *loan.Valuation) error
	LatestValuationFn        func(ctx context.Context, loanID uint64) (*loan.Valuation, error)
	ListLtvBreachesFn        func(ctx context.Context, threshold decimal.Decimal) ([]loan.LtvBreach, int64, error)
	CreateLiquidationFn      func(ctx context.Context, lq *loan.Liquidation) error
	GetLiquidationByLoanIDFn func(ctx context.Context, loanID uint64) (*loan.Liquidation, error)
	UpsertRepaymentFn        func(ctx context.Context, rp *loan.Repayment) error
	GetRepaymentByLoanIDFn   func(ctx context.Context, loanID uint64) (*loan.Repayment, error)
	GetRepaymentByInvoiceIDFn func(ctx context.Context, invoiceID int64) (*loan.Repayment, error)
}

func (m *Repo) Create(ctx context.Context, l *loan.Loan) error {
	return m.CreateFn(ctx, l)
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*loan.Loan, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID uint64) (*loan.Loan, error) {
	return m.GetByApplicationIDFn(ctx, applicationID)
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*loan.Loan, error) {
	return m.GetByIDForUpdateFn(ctx, id)
}

func (m *Repo) Save(ctx context.Context, l *loan.Loan) error {
	return m.SaveFn(ctx, l)
}

func (m *Repo) UpsertValuation(ctx context.Context, v *loan.Valuation) error {
	return m.UpsertValuationFn(ctx, v)
}

func (m *Repo) LatestValuation(ctx context.Context, loanID uint64) (*loan.Valuation, error) {
	return m.LatestValuationFn(ctx, loanID)
}

func (m *Repo) ListLtvBreaches(ctx context.Context, threshold decimal.Decimal) ([]loan.LtvBreach, int64, error) {
	return m.ListLtvBreachesFn(ctx, threshold)
}

func (m *Repo) CreateLiquidation(ctx context.Context, lq *loan.Liquidation) error {
	return m.CreateLiquidationFn(ctx, lq)
}

func (m *Repo) GetLiquidationByLoanID(ctx context.Context, loanID uint64) (*loan.Liquidation, error) {
	return m.GetLiquidationByLoanIDFn(ctx, loanID)
}

func (m *Repo) UpsertRepayment(ctx context.Context, rp *loan.Repayment) error {
	return m.UpsertRepaymentFn(ctx, rp)
}

func (m *Repo) GetRepaymentByLoanID(ctx context.Context, loanID uint64) (*loan.Repayment, error) {
	return m.GetRepaymentByLoanIDFn(ctx, loanID)
}

func (m *Repo) GetRepaymentByInvoiceID(ctx context.Context, invoiceID int64) (*loan.Repayment, error) {
	return m.GetRepaymentByInvoiceIDFn(ctx, invoiceID)
}

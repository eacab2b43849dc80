package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create is insert-only; a second loan for the same application fails
	// with ErrAlreadyOriginated.
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByApplicationID(ctx context.Context, applicationID uint64) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error

	// UpsertValuation inserts or replaces the valuation keyed by
	// (loan_id, exchange_rate_id).
	UpsertValuation(ctx context.Context, v *Valuation) error
	LatestValuation(ctx context.Context, loanID uint64) (*Valuation, error)

	// ListLtvBreaches returns active/originated loans whose current LTV
	// exceeds threshold, ordered by current LTV descending, plus the total
	// number of loans scanned.
	ListLtvBreaches(ctx context.Context, threshold decimal.Decimal) ([]LtvBreach, int64, error)

	CreateLiquidation(ctx context.Context, lq *Liquidation) error
	GetLiquidationByLoanID(ctx context.Context, loanID uint64) (*Liquidation, error)

	UpsertRepayment(ctx context.Context, rp *Repayment) error
	GetRepaymentByLoanID(ctx context.Context, loanID uint64) (*Repayment, error)
	GetRepaymentByInvoiceID(ctx context.Context, invoiceID int64) (*Repayment, error)
}

package mysql

import (
	"context"
	"errors"

	loanDomain "cryptolend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return loanDomain.ErrAlreadyOriginated
	}
	return err
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_application_id = ?", applicationID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) UpsertValuation(ctx context.Context, v *loanDomain.Valuation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "loan_id"}, {Name: "exchange_rate_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"valuation_date", "ltv_ratio", "collateral_valuation_amount", "updated_at",
			}),
		}).
		Create(v).Error
}

func (r *LoanRepository) LatestValuation(ctx context.Context, loanID uint64) (*loanDomain.Valuation, error) {
	var out loanDomain.Valuation
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("valuation_date DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListLtvBreaches(ctx context.Context, threshold decimal.Decimal) ([]loanDomain.LtvBreach, int64, error) {
	monitored := []loanDomain.Status{loanDomain.StatusActive, loanDomain.StatusOriginated}

	var scanned int64
	if err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("status IN ?", monitored).
		Count(&scanned).Error; err != nil {
		return nil, 0, err
	}

	var loans []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("status IN ? AND current_ltv_ratio > ?", monitored, threshold).
		Order("current_ltv_ratio DESC").
		Find(&loans)
	if res.Error != nil {
		return nil, 0, res.Error
	}

	out := make([]loanDomain.LtvBreach, 0, len(loans))
	for _, l := range loans {
		if l.CurrentLtvRatio == nil {
			continue
		}
		out = append(out, loanDomain.LtvBreach{
			LoanID:          l.ID,
			Status:          l.Status,
			CurrentLtvRatio: *l.CurrentLtvRatio,
			MCLtvRatio:      l.MCLtvRatio,
		})
	}
	return out, scanned, nil
}

// CreateLiquidation is insert-only; a second liquidation for the same loan
// fails with ErrLiquidationExists.
func (r *LoanRepository) CreateLiquidation(ctx context.Context, lq *loanDomain.Liquidation) error {
	err := r.db.WithContext(ctx).Create(lq).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return loanDomain.ErrLiquidationExists
	}
	return err
}

func (r *LoanRepository) GetLiquidationByLoanID(ctx context.Context, loanID uint64) (*loanDomain.Liquidation, error) {
	var out loanDomain.Liquidation
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) UpsertRepayment(ctx context.Context, rp *loanDomain.Repayment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "loan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"repayment_initiator", "repayment_invoice_id", "repayment_invoice_date",
				"acknowledged", "concluded_date", "updated_at",
			}),
		}).
		Create(rp).Error
}

func (r *LoanRepository) GetRepaymentByLoanID(ctx context.Context, loanID uint64) (*loanDomain.Repayment, error) {
	var out loanDomain.Repayment
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetRepaymentByInvoiceID(ctx context.Context, invoiceID int64) (*loanDomain.Repayment, error) {
	var out loanDomain.Repayment
	res := r.db.WithContext(ctx).Where("repayment_invoice_id = ?", invoiceID).First(&out)
	return &out, res.Error
}

package mysql

import (
	"context"
	"time"

	applicationDomain "cryptolend/internal/domain/application"

	"gorm.io/gorm"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *applicationDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint64) (*applicationDomain.LoanApplication, error) {
	var out applicationDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*applicationDomain.LoanApplication, error) {
	var out applicationDomain.LoanApplication
	res := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByCollateralInvoiceIDForUpdate(ctx context.Context, invoiceID int64) (*applicationDomain.LoanApplication, error) {
	var out applicationDomain.LoanApplication
	res := forUpdate(r.db.WithContext(ctx)).
		Where("collateral_invoice_id = ?", invoiceID).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *applicationDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) ListExpiring(ctx context.Context, asOf time.Time, limit int) ([]applicationDomain.LoanApplication, error) {
	var out []applicationDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Where("status IN ? AND expired_date <= ?",
			[]applicationDomain.Status{applicationDomain.StatusPendingCollateral, applicationDomain.StatusPublished}, asOf).
		Order("expired_date").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

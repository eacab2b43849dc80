package mysql

import (
	"context"
	"time"

	offerDomain "cryptolend/internal/domain/offer"

	"gorm.io/gorm"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.LoanOffer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) GetByID(ctx context.Context, id uint64) (*offerDomain.LoanOffer, error) {
	var out offerDomain.LoanOffer
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

// GetByIDForUpdate locks the offer row; every reserve/release of principal
// serializes on this lock.
func (r *OfferRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*offerDomain.LoanOffer, error) {
	var out offerDomain.LoanOffer
	res := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *OfferRepository) GetByFundingInvoiceIDForUpdate(ctx context.Context, invoiceID int64) (*offerDomain.LoanOffer, error) {
	var out offerDomain.LoanOffer
	res := forUpdate(r.db.WithContext(ctx)).
		Where("funding_invoice_id = ?", invoiceID).
		First(&out)
	return &out, res.Error
}

func (r *OfferRepository) Save(ctx context.Context, o *offerDomain.LoanOffer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OfferRepository) ListExpiring(ctx context.Context, asOf time.Time, limit int) ([]offerDomain.LoanOffer, error) {
	var out []offerDomain.LoanOffer
	res := r.db.WithContext(ctx).
		Where("status IN ? AND expired_date <= ?",
			[]offerDomain.Status{offerDomain.StatusFunding, offerDomain.StatusPublished}, asOf).
		Order("expired_date").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

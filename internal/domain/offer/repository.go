package offer

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o *LoanOffer) error
	GetByID(ctx context.Context, id uint64) (*LoanOffer, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*LoanOffer, error)
	GetByFundingInvoiceIDForUpdate(ctx context.Context, invoiceID int64) (*LoanOffer, error)
	Save(ctx context.Context, o *LoanOffer) error
	// ListExpiring returns funding/published offers whose expiry has passed.
	ListExpiring(ctx context.Context, asOf time.Time, limit int) ([]LoanOffer, error)
}

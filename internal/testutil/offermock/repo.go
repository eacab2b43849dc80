package offermock

import (
	"context"
	"time"

	"cryptolend/internal/domain/offer"
)

// Repo is a function-backed offer.Repository for usecase tests.
type Repo struct {
	CreateFn                         func(ctx context.Context, o *offer.LoanOffer) error
	GetByIDFn                        func(ctx context.Context, id uint64) (*offer.LoanOffer, error)
	GetByIDForUpdateFn               func(ctx context.Context, id uint64) (*offer.LoanOffer, error)
	GetByFundingInvoiceIDForUpdateFn func(ctx context.Context, invoiceID int64) (*offer.LoanOffer, error)
	SaveFn                           func(ctx context.Context, o *offer.LoanOffer) error
	ListExpiringFn                   func(ctx context.Context, asOf time.Time, limit int) ([]offer.LoanOffer, error)
}

func (m *Repo) Create(ctx context.Context, o *offer.LoanOffer) error {
	return m.CreateFn(ctx, o)
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*offer.LoanOffer, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*offer.LoanOffer, error) {
	return m.GetByIDForUpdateFn(ctx, id)
}

func (m *Repo) GetByFundingInvoiceIDForUpdate(ctx context.Context, invoiceID int64) (*offer.LoanOffer, error) {
	return m.GetByFundingInvoiceIDForUpdateFn(ctx, invoiceID)
}

func (m *Repo) Save(ctx context.Context, o *offer.LoanOffer) error {
	return m.SaveFn(ctx, o)
}

func (m *Repo) ListExpiring(ctx context.Context, asOf time.Time, limit int) ([]offer.LoanOffer, error) {
	return m.ListExpiringFn(ctx, asOf, limit)
}

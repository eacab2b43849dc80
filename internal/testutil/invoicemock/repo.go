package invoicemock

import (
	"context"
	"time"

	"cryptolend/internal/domain/invoice"
)

// Repo is a function-backed invoice.Repository for usecase tests.
type Repo struct {
	CreateFn           func(ctx context.Context, inv *invoice.Invoice) error
	GetByIDFn          func(ctx context.Context, id int64) (*invoice.Invoice, error)
	GetByIDForUpdateFn func(ctx context.Context, id int64) (*invoice.Invoice, error)
	SaveFn             func(ctx context.Context, inv *invoice.Invoice) error
	ListPendingFn      func(ctx context.Context, offset, limit int) ([]invoice.Invoice, error)
	ListPendingDueFn   func(ctx context.Context, asOf time.Time, limit int) ([]invoice.Invoice, error)
	CreatePaymentFn    func(ctx context.Context, p *invoice.Payment) error
}

func (m *Repo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return m.CreateFn(ctx, inv)
}

func (m *Repo) GetByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return m.GetByIDForUpdateFn(ctx, id)
}

func (m *Repo) Save(ctx context.Context, inv *invoice.Invoice) error {
	return m.SaveFn(ctx, inv)
}

func (m *Repo) ListPending(ctx context.Context, offset, limit int) ([]invoice.Invoice, error) {
	return m.ListPendingFn(ctx, offset, limit)
}

func (m *Repo) ListPendingDue(ctx context.Context, asOf time.Time, limit int) ([]invoice.Invoice, error) {
	return m.ListPendingDueFn(ctx, asOf, limit)
}

func (m *Repo) CreatePayment(ctx context.Context, p *invoice.Payment) error {
	return m.CreatePaymentFn(ctx, p)
}

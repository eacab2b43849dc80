package invoice

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*Invoice, error)
	Save(ctx context.Context, inv *Invoice) error
	// ListPending pages pending invoices for the active-invoice cache rebuild.
	ListPending(ctx context.Context, offset, limit int) ([]Invoice, error)
	// ListPendingDue returns pending invoices whose due date has passed.
	ListPendingDue(ctx context.Context, asOf time.Time, limit int) ([]Invoice, error)
	CreatePayment(ctx context.Context, p *Payment) error
}

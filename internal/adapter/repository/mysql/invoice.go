package mysql

import (
	"context"
	"errors"
	"time"

	invoiceDomain "cryptolend/internal/domain/invoice"

	"gorm.io/gorm"
)

type InvoiceRepository struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository { return &InvoiceRepository{db: db} }

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoiceDomain.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, id int64) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *InvoiceRepository) Save(ctx context.Context, inv *invoiceDomain.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *InvoiceRepository) ListPending(ctx context.Context, offset, limit int) ([]invoiceDomain.Invoice, error) {
	var out []invoiceDomain.Invoice
	res := r.db.WithContext(ctx).
		Where("status = ?", invoiceDomain.StatusPending).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&out)
	return out, res.Error
}

func (r *InvoiceRepository) ListPendingDue(ctx context.Context, asOf time.Time, limit int) ([]invoiceDomain.Invoice, error) {
	var out []invoiceDomain.Invoice
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date <= ?", invoiceDomain.StatusPending, asOf).
		Order("due_date").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

// CreatePayment inserts one matched payment. A (invoice_id, payment_hash)
// collision is translated to ErrDuplicatePayment, never merged.
func (r *InvoiceRepository) CreatePayment(ctx context.Context, p *invoiceDomain.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invoiceDomain.ErrDuplicatePayment
	}
	return err
}

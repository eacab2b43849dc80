package invoice

import (
	"context"
	"errors"
	"strings"
	"time"

	invoiceDomain "cryptolend/internal/domain/invoice"
	"cryptolend/pkg/id"
	"cryptolend/pkg/logger"
	"cryptolend/pkg/money"

	"gorm.io/gorm"
)

type Usecase struct {
	invoices invoiceDomain.Repository
	gen      *id.Generator
}

func NewUsecase(r invoiceDomain.Repository, gen *id.Generator) *Usecase {
	return &Usecase{invoices: r, gen: gen}
}

type CreateInput struct {
	UserID               string             `json:"user_id"`
	BlockchainKey        string             `json:"blockchain_key"`
	TokenID              string             `json:"token_id"`
	InvoiceType          invoiceDomain.Type `json:"invoice_type"`
	Amount               string             `json:"amount"`
	WalletAddress        string             `json:"wallet_address"`
	WalletDerivationPath string             `json:"wallet_derivation_path"`
	InvoiceDate          time.Time          `json:"invoice_date"`
	DueDate              *time.Time         `json:"due_date,omitempty"`
}

// Create inserts a new pending invoice with a pre-generated id.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*invoiceDomain.Invoice, error) {
	if in.UserID == "" || in.WalletAddress == "" || !money.IsPositive(in.Amount) {
		return nil, money.ErrInvalidAmount
	}
	invoiceID, err := u.gen.Next()
	if err != nil {
		return nil, err
	}
	inv := &invoiceDomain.Invoice{
		ID:                    invoiceID,
		UserID:                in.UserID,
		CurrencyBlockchainKey: in.BlockchainKey,
		CurrencyTokenID:       strings.ToLower(in.TokenID),
		InvoiceType:           in.InvoiceType,
		InvoicedAmount:        in.Amount,
		PaidAmount:            money.Zero,
		WalletAddress:         strings.ToLower(in.WalletAddress),
		WalletDerivationPath:  in.WalletDerivationPath,
		Status:                invoiceDomain.StatusPending,
		InvoiceDate:           in.InvoiceDate.UTC(),
		DueDate:               in.DueDate,
	}
	if err := u.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (u *Usecase) Get(ctx context.Context, invoiceID int64) (*invoiceDomain.Invoice, error) {
	inv, err := u.invoices.GetByID(ctx, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invoiceDomain.ErrNotFound
	}
	return inv, err
}

// Cancel marks a pending invoice cancelled; any other status is rejected.
func (u *Usecase) Cancel(ctx context.Context, invoiceID int64, at time.Time) (*invoiceDomain.Invoice, error) {
	inv, err := u.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoiceDomain.ErrNotFound
		}
		return nil, err
	}
	if inv.Status != invoiceDomain.StatusPending {
		return nil, invoiceDomain.ErrNotPending
	}
	at = at.UTC()
	inv.Status = invoiceDomain.StatusCancelled
	inv.ExpiredDate = &at
	if err := u.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ExpirePending is the periodic sweep: pending invoices past their due date
// become expired. It returns the number of invoices it expired.
func (u *Usecase) ExpirePending(ctx context.Context, asOf time.Time, limit int) (int, error) {
	due, err := u.invoices.ListPendingDue(ctx, asOf, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	asOf = asOf.UTC()
	for i := range due {
		inv := &due[i]
		inv.Status = invoiceDomain.StatusExpired
		inv.ExpiredDate = &asOf
		if err := u.invoices.Save(ctx, inv); err != nil {
			logger.Warnf("invoice sweep: expire %d: %v", inv.ID, err)
			continue
		}
		expired++
	}
	return expired, nil
}

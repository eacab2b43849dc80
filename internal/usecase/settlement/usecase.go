package settlement

import (
	"context"
	"errors"
	"strings"
	"time"

	accountDomain "cryptolend/internal/domain/account"
	applicationDomain "cryptolend/internal/domain/application"
	invoiceDomain "cryptolend/internal/domain/invoice"
	loanDomain "cryptolend/internal/domain/loan"
	offerDomain "cryptolend/internal/domain/offer"
	settlementDomain "cryptolend/internal/domain/settlement"
	"cryptolend/internal/domain/uow"
	"cryptolend/internal/usecase/ledger"
	"cryptolend/pkg/logger"
	"cryptolend/pkg/money"

	"gorm.io/gorm"
)

// Cache is the active-invoice index consulted before touching storage.
type Cache interface {
	Lookup(ctx context.Context, blockchainKey, address string) (*invoiceDomain.Invoice, bool, error)
}

type Usecase struct {
	cache Cache
	uow   uow.UnitOfWork
}

func NewUsecase(cache Cache, tx uow.UnitOfWork) *Usecase {
	return &Usecase{cache: cache, uow: tx}
}

// HandleDetected matches one detected transaction against the pending
// invoices and applies the payment, ledger credit and any lifecycle hooks in
// one transaction. It is safe under redelivery: a replayed transaction
// collides on the (invoice, payment hash) uniqueness boundary and is treated
// as already settled.
func (u *Usecase) HandleDetected(ctx context.Context, dt settlementDomain.DetectedTransaction) error {
	cached, ok, err := u.cache.Lookup(ctx, dt.BlockchainKey, dt.WalletAddress)
	if err != nil {
		return err
	}
	if !ok {
		// no invoice expects a deposit on this address
		logger.Debugf("settlement: unmatched deposit %s on %s/%s", dt.TransactionHash, dt.BlockchainKey, dt.WalletAddress)
		return nil
	}

	// the stream is an external interface; drop anything that could not
	// increase the paid amount instead of cycling it through redelivery
	if !money.IsPositive(dt.Amount) {
		logger.Warnf("settlement: tx %s carries non-positive amount %q, dropping", dt.TransactionHash, dt.Amount)
		return nil
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		inv, err := r.Invoices.GetByIDForUpdate(ctx, cached.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warnf("settlement: cached invoice %d no longer exists", cached.ID)
				return nil
			}
			return err
		}
		if inv.Status != invoiceDomain.StatusPending {
			// cache was stale; a previous delivery already settled it
			return nil
		}
		if !strings.EqualFold(inv.CurrencyTokenID, dt.TokenID) {
			logger.Warnf("settlement: tx %s token %q does not match invoice %d token %q",
				dt.TransactionHash, dt.TokenID, inv.ID, inv.CurrencyTokenID)
			return nil
		}

		paymentDate := dt.DetectedAt.UTC()
		if err := r.Invoices.CreatePayment(ctx, &invoiceDomain.Payment{
			InvoiceID:   inv.ID,
			PaymentHash: dt.TransactionHash,
			Amount:      dt.Amount,
			PaymentDate: paymentDate,
		}); err != nil {
			return err
		}

		paid, err := money.Add(inv.PaidAmount, dt.Amount)
		if err != nil {
			return err
		}
		inv.PaidAmount = paid
		fullyPaid := money.GTE(paid, inv.InvoicedAmount)
		if fullyPaid {
			inv.Status = invoiceDomain.StatusPaid
			inv.PaidDate = &paymentDate
		}
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}

		acct, err := ledger.GetOrCreate(ctx, r.Accounts, inv.UserID,
			inv.CurrencyBlockchainKey, inv.CurrencyTokenID, accountTypeFor(inv.InvoiceType))
		if err != nil {
			return err
		}
		if err := r.Accounts.AppendEntry(ctx, &accountDomain.MutationEntry{
			AccountID:    acct.ID,
			MutationType: accountDomain.MutationDeposit,
			MutationDate: paymentDate,
			Amount:       dt.Amount,
		}); err != nil {
			return err
		}

		switch inv.InvoiceType {
		case invoiceDomain.TypeLoanPrincipal:
			if fullyPaid {
				return publishFundedOffer(ctx, r, inv.ID, paymentDate)
			}
		case invoiceDomain.TypeLoanCollateral:
			if fullyPaid {
				return publishCollateralizedApplication(ctx, r, inv, paymentDate)
			}
		case invoiceDomain.TypeLoanRepayment, invoiceDomain.TypeLoanEarlyRepayment:
			if fullyPaid {
				return concludeRepaidLoan(ctx, r, inv.ID, paymentDate)
			}
		}
		return nil
	})
	if errors.Is(err, invoiceDomain.ErrDuplicatePayment) {
		logger.Infof("settlement: tx %s already recorded for invoice %d", dt.TransactionHash, cached.ID)
		return nil
	}
	return err
}

// accountTypeFor picks the ledger account a deposit credits: collateral
// deposits go to the collateral account, principal funding to the lending
// account, repayments to the main account.
func accountTypeFor(t invoiceDomain.Type) accountDomain.Type {
	switch t {
	case invoiceDomain.TypeLoanCollateral:
		return accountDomain.TypeCollateral
	case invoiceDomain.TypeLoanPrincipal:
		return accountDomain.TypeLending
	default:
		return accountDomain.TypeMain
	}
}

func publishFundedOffer(ctx context.Context, r uow.Repos, invoiceID int64, paymentDate time.Time) error {
	o, err := r.Offers.GetByFundingInvoiceIDForUpdate(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if o.Status != offerDomain.StatusFunding {
		return nil
	}
	o.Status = offerDomain.StatusPublished
	o.PublishedDate = &paymentDate
	return r.Offers.Save(ctx, o)
}

func publishCollateralizedApplication(ctx context.Context, r uow.Repos, inv *invoiceDomain.Invoice, paymentDate time.Time) error {
	a, err := r.Applications.GetByCollateralInvoiceIDForUpdate(ctx, inv.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if a.Status != applicationDomain.StatusPendingCollateral {
		return nil
	}
	a.Status = applicationDomain.StatusPublished
	a.PublishedDate = &paymentDate
	a.CollateralDepositAmount = inv.PaidAmount
	return r.Applications.Save(ctx, a)
}

func concludeRepaidLoan(ctx context.Context, r uow.Repos, invoiceID int64, paymentDate time.Time) error {
	rp, err := r.Loans.GetRepaymentByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	l, err := r.Loans.GetByIDForUpdate(ctx, rp.LoanID)
	if err != nil {
		return err
	}
	if l.Status != loanDomain.StatusActive {
		return nil
	}
	l.Status = loanDomain.StatusRepaid
	if err := r.Loans.Save(ctx, l); err != nil {
		return err
	}
	rp.ConcludedDate = &paymentDate
	return r.Loans.UpsertRepayment(ctx, rp)
}

package loanbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	applicationDomain "cryptolend/internal/domain/application"
	currencyDomain "cryptolend/internal/domain/currency"
	invoiceDomain "cryptolend/internal/domain/invoice"
	loanDomain "cryptolend/internal/domain/loan"
	offerDomain "cryptolend/internal/domain/offer"
	platformDomain "cryptolend/internal/domain/platform"
	"cryptolend/internal/domain/uow"
	"cryptolend/pkg/id"
	"cryptolend/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct {
	uow      uow.UnitOfWork
	platform platformDomain.Repository
	loans    loanDomain.Repository
	gen      *id.Generator
}

func NewUsecase(tx uow.UnitOfWork, platform platformDomain.Repository, loans loanDomain.Repository, gen *id.Generator) *Usecase {
	return &Usecase{uow: tx, platform: platform, loans: loans, gen: gen}
}

// requireCurrency rejects chain/token pairs the platform does not list.
func requireCurrency(ctx context.Context, r uow.Repos, blockchainKey, tokenID string) error {
	_, err := r.Currencies.GetByChainToken(ctx, blockchainKey, strings.ToLower(tokenID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return currencyDomain.ErrNotFound
	}
	return err
}

// cancelPendingInvoice closes the deposit invoice left behind when its
// offer or application leaves the lifecycle. Settled or vanished invoices
// are left alone.
func cancelPendingInvoice(ctx context.Context, r uow.Repos, invoiceID int64, at time.Time) error {
	inv, err := r.Invoices.GetByIDForUpdate(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if inv.Status != invoiceDomain.StatusPending {
		return nil
	}
	inv.Status = invoiceDomain.StatusCancelled
	inv.ExpiredDate = &at
	return r.Invoices.Save(ctx, inv)
}

type CreateOfferInput struct {
	LenderUserID           string          `json:"lender_user_id"`
	PrincipalBlockchainKey string          `json:"principal_blockchain_key"`
	PrincipalTokenID       string          `json:"principal_token_id"`
	OfferedPrincipalAmount string          `json:"offered_principal_amount"`
	MinLoanPrincipalAmount string          `json:"min_loan_principal_amount"`
	MaxLoanPrincipalAmount string          `json:"max_loan_principal_amount"`
	InterestRate           decimal.Decimal `json:"interest_rate"`
	TermMonths             []int           `json:"term_in_months_options"`
	WalletAddress          string          `json:"wallet_address"`
	WalletDerivationPath   string          `json:"wallet_derivation_path"`
	CreatedDate            time.Time       `json:"created_date"`
	ExpiredDate            time.Time       `json:"expired_date"`
	FundingDueDate         *time.Time      `json:"funding_due_date,omitempty"`
}

// CreateOffer opens a Funding offer together with its funding invoice; the
// offer publishes when the invoice settles.
func (u *Usecase) CreateOffer(ctx context.Context, in CreateOfferInput) (*offerDomain.LoanOffer, error) {
	if in.LenderUserID == "" || !money.IsPositive(in.OfferedPrincipalAmount) {
		return nil, money.ErrInvalidAmount
	}
	invoiceID, err := u.gen.Next()
	if err != nil {
		return nil, err
	}

	var out *offerDomain.LoanOffer
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := requireCurrency(ctx, r, in.PrincipalBlockchainKey, in.PrincipalTokenID); err != nil {
			return err
		}
		if err := r.Invoices.Create(ctx, &invoiceDomain.Invoice{
			ID:                    invoiceID,
			UserID:                in.LenderUserID,
			CurrencyBlockchainKey: in.PrincipalBlockchainKey,
			CurrencyTokenID:       strings.ToLower(in.PrincipalTokenID),
			InvoiceType:           invoiceDomain.TypeLoanPrincipal,
			InvoicedAmount:        in.OfferedPrincipalAmount,
			PaidAmount:            money.Zero,
			WalletAddress:         strings.ToLower(in.WalletAddress),
			WalletDerivationPath:  in.WalletDerivationPath,
			Status:                invoiceDomain.StatusPending,
			InvoiceDate:           in.CreatedDate.UTC(),
			DueDate:               in.FundingDueDate,
		}); err != nil {
			return err
		}

		o := &offerDomain.LoanOffer{
			LenderUserID:             in.LenderUserID,
			PrincipalBlockchainKey:   in.PrincipalBlockchainKey,
			PrincipalTokenID:         strings.ToLower(in.PrincipalTokenID),
			OfferedPrincipalAmount:   in.OfferedPrincipalAmount,
			AvailablePrincipalAmount: in.OfferedPrincipalAmount,
			ReservedPrincipalAmount:  money.Zero,
			DisbursedPrincipalAmount: money.Zero,
			MinLoanPrincipalAmount:   in.MinLoanPrincipalAmount,
			MaxLoanPrincipalAmount:   in.MaxLoanPrincipalAmount,
			InterestRate:             in.InterestRate,
			TermOptions:              offerDomain.JoinTermMonths(in.TermMonths),
			FundingInvoiceID:         invoiceID,
			Status:                   offerDomain.StatusFunding,
			CreatedDate:              in.CreatedDate.UTC(),
			ExpiredDate:              in.ExpiredDate.UTC(),
		}
		if err := r.Offers.Create(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CloseOffer is lender-initiated and only valid from Funding or Published.
func (u *Usecase) CloseOffer(ctx context.Context, offerID uint64, lenderUserID, reason string, at time.Time) (*offerDomain.LoanOffer, error) {
	var out *offerDomain.LoanOffer
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByIDForUpdate(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return offerDomain.ErrNotFound
			}
			return err
		}
		if o.LenderUserID != lenderUserID {
			return offerDomain.ErrNotFound
		}
		if o.Status != offerDomain.StatusFunding && o.Status != offerDomain.StatusPublished {
			return offerDomain.ErrInvalidTransition
		}
		at := at.UTC()
		o.Status = offerDomain.StatusClosed
		o.ClosedDate = &at
		o.ClosureReason = reason
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		if err := cancelPendingInvoice(ctx, r, o.FundingInvoiceID, at); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireOffers sweeps funding/published offers past their expiry date.
func (u *Usecase) ExpireOffers(ctx context.Context, asOf time.Time, limit int) (int, error) {
	expired := 0
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		offers, err := r.Offers.ListExpiring(ctx, asOf, limit)
		if err != nil {
			return err
		}
		at := asOf.UTC()
		for i := range offers {
			o := &offers[i]
			o.Status = offerDomain.StatusExpired
			o.ClosedDate = &at
			o.ClosureReason = "offer expired"
			if err := r.Offers.Save(ctx, o); err != nil {
				return err
			}
			if err := cancelPendingInvoice(ctx, r, o.FundingInvoiceID, at); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	return expired, err
}

type CreateApplicationInput struct {
	BorrowerUserID          string                            `json:"borrower_user_id"`
	PrincipalBlockchainKey  string                            `json:"principal_blockchain_key"`
	PrincipalTokenID        string                            `json:"principal_token_id"`
	PrincipalAmount         string                            `json:"principal_amount"`
	ProvisionAmount         string                            `json:"provision_amount"`
	MaxInterestRate         decimal.Decimal                   `json:"max_interest_rate"`
	MinLtvRatio             decimal.Decimal                   `json:"min_ltv_ratio"`
	MaxLtvRatio             decimal.Decimal                   `json:"max_ltv_ratio"`
	TermInMonths            int                               `json:"term_in_months"`
	LiquidationMode         applicationDomain.LiquidationMode `json:"liquidation_mode"`
	CollateralBlockchainKey string                            `json:"collateral_blockchain_key"`
	CollateralTokenID       string                            `json:"collateral_token_id"`
	CollateralDepositAmount string                            `json:"collateral_deposit_amount"`
	CollateralRateID        uint64                            `json:"collateral_deposit_exchange_rate_id"`
	WalletAddress           string                            `json:"wallet_address"`
	WalletDerivationPath    string                            `json:"wallet_derivation_path"`
	AppliedDate             time.Time                         `json:"applied_date"`
	ExpiredDate             time.Time                         `json:"expired_date"`
	CollateralDueDate       *time.Time                        `json:"collateral_due_date,omitempty"`
}

// CreateApplication opens a PendingCollateral application together with its
// collateral deposit invoice.
func (u *Usecase) CreateApplication(ctx context.Context, in CreateApplicationInput) (*applicationDomain.LoanApplication, error) {
	if in.BorrowerUserID == "" || !money.IsPositive(in.PrincipalAmount) || !money.IsPositive(in.CollateralDepositAmount) {
		return nil, money.ErrInvalidAmount
	}
	invoiceID, err := u.gen.Next()
	if err != nil {
		return nil, err
	}

	var out *applicationDomain.LoanApplication
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := requireCurrency(ctx, r, in.PrincipalBlockchainKey, in.PrincipalTokenID); err != nil {
			return err
		}
		if err := requireCurrency(ctx, r, in.CollateralBlockchainKey, in.CollateralTokenID); err != nil {
			return err
		}
		if err := r.Invoices.Create(ctx, &invoiceDomain.Invoice{
			ID:                    invoiceID,
			UserID:                in.BorrowerUserID,
			CurrencyBlockchainKey: in.CollateralBlockchainKey,
			CurrencyTokenID:       strings.ToLower(in.CollateralTokenID),
			InvoiceType:           invoiceDomain.TypeLoanCollateral,
			InvoicedAmount:        in.CollateralDepositAmount,
			PaidAmount:            money.Zero,
			WalletAddress:         strings.ToLower(in.WalletAddress),
			WalletDerivationPath:  in.WalletDerivationPath,
			Status:                invoiceDomain.StatusPending,
			InvoiceDate:           in.AppliedDate.UTC(),
			DueDate:               in.CollateralDueDate,
		}); err != nil {
			return err
		}

		a := &applicationDomain.LoanApplication{
			BorrowerUserID:                  in.BorrowerUserID,
			PrincipalBlockchainKey:          in.PrincipalBlockchainKey,
			PrincipalTokenID:                strings.ToLower(in.PrincipalTokenID),
			PrincipalAmount:                 in.PrincipalAmount,
			ProvisionAmount:                 in.ProvisionAmount,
			MaxInterestRate:                 in.MaxInterestRate,
			MinLtvRatio:                     in.MinLtvRatio,
			MaxLtvRatio:                     in.MaxLtvRatio,
			TermInMonths:                    in.TermInMonths,
			LiquidationMode:                 in.LiquidationMode,
			CollateralBlockchainKey:         in.CollateralBlockchainKey,
			CollateralTokenID:               strings.ToLower(in.CollateralTokenID),
			CollateralDepositAmount:         in.CollateralDepositAmount,
			CollateralDepositExchangeRateID: in.CollateralRateID,
			CollateralInvoiceID:             invoiceID,
			Status:                          applicationDomain.StatusPendingCollateral,
			AppliedDate:                     in.AppliedDate.UTC(),
			ExpiredDate:                     in.ExpiredDate.UTC(),
		}
		if err := r.Applications.Create(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelApplication is borrower-initiated and only valid from
// PendingCollateral or Published. A still-pending collateral invoice is
// cancelled with it.
func (u *Usecase) CancelApplication(ctx context.Context, applicationID uint64, borrowerUserID string, at time.Time) (*applicationDomain.LoanApplication, error) {
	var out *applicationDomain.LoanApplication
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Applications.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return applicationDomain.ErrNotFound
			}
			return err
		}
		if a.BorrowerUserID != borrowerUserID {
			return applicationDomain.ErrNotFound
		}
		if a.Status != applicationDomain.StatusPendingCollateral && a.Status != applicationDomain.StatusPublished {
			return applicationDomain.ErrInvalidTransition
		}
		at := at.UTC()
		a.Status = applicationDomain.StatusCancelled
		a.ClosedDate = &at
		a.ClosureReason = "cancelled by borrower"
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}

		if err := cancelPendingInvoice(ctx, r, a.CollateralInvoiceID, at); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireApplications sweeps applications past their expiry date.
func (u *Usecase) ExpireApplications(ctx context.Context, asOf time.Time, limit int) (int, error) {
	expired := 0
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		apps, err := r.Applications.ListExpiring(ctx, asOf, limit)
		if err != nil {
			return err
		}
		at := asOf.UTC()
		for i := range apps {
			a := &apps[i]
			a.Status = applicationDomain.StatusExpired
			a.ClosedDate = &at
			a.ClosureReason = "application expired"
			if err := r.Applications.Save(ctx, a); err != nil {
				return err
			}
			if err := cancelPendingInvoice(ctx, r, a.CollateralInvoiceID, at); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	return expired, err
}

type MatchInput struct {
	OfferID                   uint64          `json:"offer_id"`
	ApplicationID             uint64          `json:"application_id"`
	LtvRatio                  decimal.Decimal `json:"ltv_ratio"`
	CollateralValuationAmount string          `json:"collateral_valuation_amount"`
	MatchedDate               time.Time       `json:"matched_date"`
}

// Match binds a published application to a published offer and reserves the
// principal on the offer. The offer row lock serializes concurrent matches
// so total reservations never exceed the offered amount.
func (u *Usecase) Match(ctx context.Context, in MatchInput) (*applicationDomain.LoanApplication, error) {
	var out *applicationDomain.LoanApplication
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByIDForUpdate(ctx, in.OfferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return offerDomain.ErrNotFound
			}
			return err
		}
		a, err := r.Applications.GetByIDForUpdate(ctx, in.ApplicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return applicationDomain.ErrNotFound
			}
			return err
		}

		if a.Status != applicationDomain.StatusPublished {
			return applicationDomain.ErrNotPublished
		}
		if o.Status != offerDomain.StatusPublished {
			return offerDomain.ErrNotPublished
		}
		if a.BorrowerUserID == o.LenderUserID {
			return applicationDomain.ErrSelfMatch
		}
		if !money.GTE(o.AvailablePrincipalAmount, a.PrincipalAmount) {
			return offerDomain.ErrInsufficientAvailable
		}

		available, err := money.Sub(o.AvailablePrincipalAmount, a.PrincipalAmount)
		if err != nil {
			return err
		}
		reserved, err := money.Add(o.ReservedPrincipalAmount, a.PrincipalAmount)
		if err != nil {
			return err
		}
		o.AvailablePrincipalAmount = available
		o.ReservedPrincipalAmount = reserved
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}

		at := in.MatchedDate.UTC()
		ltv := in.LtvRatio
		valuation := in.CollateralValuationAmount
		a.Status = applicationDomain.StatusMatched
		a.MatchedDate = &at
		a.MatchedLoanOfferID = &o.ID
		a.MatchedLtvRatio = &ltv
		a.MatchedCollateralValuationAmount = &valuation
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoanTerms carries the precomputed amounts from the pricing collaborator.
// They are stored verbatim; nothing here recomputes them.
type LoanTerms struct {
	InterestAmount         string          `json:"interest_amount"`
	RepaymentAmount        string          `json:"repayment_amount"`
	RedeliveryFeeAmount    string          `json:"redelivery_fee_amount"`
	RedeliveryAmount       string          `json:"redelivery_amount"`
	PremiAmount            string          `json:"premi_amount"`
	LiquidationFeeAmount   string          `json:"liquidation_fee_amount"`
	MinCollateralValuation string          `json:"min_collateral_valuation"`
	MCLtvRatio             decimal.Decimal `json:"mc_ltv_ratio"`
	MaturityDate           time.Time       `json:"maturity_date"`
	LegalDocumentPath      string          `json:"legal_document_path,omitempty"`
	LegalDocumentHash      string          `json:"legal_document_hash,omitempty"`
}

type OriginateInput struct {
	OfferID         uint64    `json:"offer_id"`
	ApplicationID   uint64    `json:"application_id"`
	Terms           LoanTerms `json:"terms"`
	OriginationDate time.Time `json:"origination_date"`
}

// Originate creates the loan from a matched application and its published
// offer, moving the matched principal from reserved to disbursed.
func (u *Usecase) Originate(ctx context.Context, in OriginateInput) (*loanDomain.Loan, error) {
	var out *loanDomain.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByIDForUpdate(ctx, in.OfferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return offerDomain.ErrNotFound
			}
			return err
		}
		a, err := r.Applications.GetByIDForUpdate(ctx, in.ApplicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return applicationDomain.ErrNotFound
			}
			return err
		}

		if a.Status != applicationDomain.StatusMatched {
			return applicationDomain.ErrNotMatched
		}
		if o.Status != offerDomain.StatusPublished {
			return offerDomain.ErrNotPublished
		}
		if a.MatchedLoanOfferID == nil || *a.MatchedLoanOfferID != o.ID {
			return applicationDomain.ErrNotMatched
		}
		// one loan per application; the unique index on loan_application_id
		// backstops this under concurrent submissions
		if _, err := r.Loans.GetByApplicationID(ctx, a.ID); err == nil {
			return loanDomain.ErrAlreadyOriginated
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reserved, err := money.Sub(o.ReservedPrincipalAmount, a.PrincipalAmount)
		if err != nil {
			return err
		}
		disbursed, err := money.Add(o.DisbursedPrincipalAmount, a.PrincipalAmount)
		if err != nil {
			return err
		}
		o.ReservedPrincipalAmount = reserved
		o.DisbursedPrincipalAmount = disbursed
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}

		l := &loanDomain.Loan{
			LoanOfferID:             o.ID,
			LoanApplicationID:       a.ID,
			PrincipalBlockchainKey:  a.PrincipalBlockchainKey,
			PrincipalTokenID:        a.PrincipalTokenID,
			PrincipalAmount:         a.PrincipalAmount,
			InterestAmount:          in.Terms.InterestAmount,
			RepaymentAmount:         in.Terms.RepaymentAmount,
			RedeliveryFeeAmount:     in.Terms.RedeliveryFeeAmount,
			RedeliveryAmount:        in.Terms.RedeliveryAmount,
			PremiAmount:             in.Terms.PremiAmount,
			LiquidationFeeAmount:    in.Terms.LiquidationFeeAmount,
			MinCollateralValuation:  in.Terms.MinCollateralValuation,
			MCLtvRatio:              in.Terms.MCLtvRatio,
			CollateralBlockchainKey: a.CollateralBlockchainKey,
			CollateralTokenID:       a.CollateralTokenID,
			CollateralAmount:        a.CollateralDepositAmount,
			LegalDocumentPath:       in.Terms.LegalDocumentPath,
			LegalDocumentHash:       in.Terms.LegalDocumentHash,
			Status:                  loanDomain.StatusOriginated,
			OriginationDate:         in.OriginationDate.UTC(),
			MaturityDate:            in.Terms.MaturityDate.UTC(),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Disburse activates an originated loan. The fund transfer itself is an
// external collaborator's responsibility.
func (u *Usecase) Disburse(ctx context.Context, loanID uint64, at time.Time) (*loanDomain.Loan, error) {
	var out *loanDomain.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}
		if l.Status != loanDomain.StatusOriginated {
			return loanDomain.ErrInvalidTransition
		}
		at := at.UTC()
		l.Status = loanDomain.StatusActive
		l.DisbursementDate = &at
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ValuationInput struct {
	LoanID                    uint64          `json:"loan_id"`
	ExchangeRateID            uint64          `json:"exchange_rate_id"`
	ValuationDate             time.Time       `json:"valuation_date"`
	LtvRatio                  decimal.Decimal `json:"ltv_ratio"`
	CollateralValuationAmount string          `json:"collateral_valuation_amount"`
}

// RecordValuation upserts the valuation keyed by (loan, exchange rate) and
// overwrites the loan's current LTV. Valuations older than the latest
// recorded one are rejected; backfill is not supported.
func (u *Usecase) RecordValuation(ctx context.Context, in ValuationInput) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, in.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}

		latest, err := r.Loans.LatestValuation(ctx, l.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if latest != nil && in.ValuationDate.Before(latest.ValuationDate) {
			return loanDomain.ErrStaleValuation
		}

		if err := r.Loans.UpsertValuation(ctx, &loanDomain.Valuation{
			LoanID:                    l.ID,
			ExchangeRateID:            in.ExchangeRateID,
			ValuationDate:             in.ValuationDate.UTC(),
			LtvRatio:                  in.LtvRatio,
			CollateralValuationAmount: in.CollateralValuationAmount,
		}); err != nil {
			return err
		}

		ltv := in.LtvRatio
		l.CurrentLtvRatio = &ltv
		return r.Loans.Save(ctx, l)
	})
}

type LtvReport struct {
	Breaches  []loanDomain.LtvBreach `json:"breaches"`
	Scanned   int64                  `json:"scanned"`
	Threshold decimal.Decimal        `json:"threshold"`
}

// MonitorLTV reports active and originated loans whose current LTV exceeds
// the threshold, ordered worst first. With a nil threshold the platform's
// current max LTV applies. Read-only; remediation is the caller's call.
func (u *Usecase) MonitorLTV(ctx context.Context, threshold *decimal.Decimal, asOf time.Time) (*LtvReport, error) {
	t := decimal.Decimal{}
	if threshold != nil {
		t = *threshold
	} else {
		cfg, err := u.platform.LatestConfig(ctx, asOf)
		if err != nil {
			return nil, err
		}
		t = cfg.LoanMaxLtvRatio
	}

	breaches, scanned, err := u.loans.ListLtvBreaches(ctx, t)
	if err != nil {
		return nil, err
	}
	return &LtvReport{Breaches: breaches, Scanned: scanned, Threshold: t}, nil
}

type LiquidateInput struct {
	LoanID         uint64               `json:"loan_id"`
	Initiator      loanDomain.Initiator `json:"liquidation_initiator"`
	TargetAmount   string               `json:"liquidation_target_amount"`
	MarketProvider string               `json:"market_provider"`
	MarketSymbol   string               `json:"market_symbol"`
	Acknowledged   bool                 `json:"acknowledged"`
	OrderDate      time.Time            `json:"order_date"`
}

// Liquidate places the single liquidation order a loan may have. A
// borrower-initiated early liquidation requires an explicit acknowledgment.
func (u *Usecase) Liquidate(ctx context.Context, in LiquidateInput) (*loanDomain.Liquidation, error) {
	var out *loanDomain.Liquidation
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, in.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}
		if l.Status != loanDomain.StatusActive && l.Status != loanDomain.StatusOriginated {
			return loanDomain.ErrInvalidTransition
		}
		if in.Initiator == loanDomain.InitiatorBorrower && !in.Acknowledged {
			return loanDomain.ErrAcknowledgment
		}

		lq := &loanDomain.Liquidation{
			LoanID:                  l.ID,
			LiquidationInitiator:    in.Initiator,
			LiquidationTargetAmount: in.TargetAmount,
			MarketProvider:          in.MarketProvider,
			MarketSymbol:            in.MarketSymbol,
			OrderRef:                uuid.NewString(),
			Status:                  loanDomain.LiquidationPending,
			OrderDate:               in.OrderDate.UTC(),
			Acknowledged:            in.Acknowledged,
		}
		if err := r.Loans.CreateLiquidation(ctx, lq); err != nil {
			return err
		}
		out = lq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type RepaymentRequestInput struct {
	LoanID               uint64               `json:"loan_id"`
	Initiator            loanDomain.Initiator `json:"repayment_initiator"`
	WalletAddress        string               `json:"wallet_address"`
	WalletDerivationPath string               `json:"wallet_derivation_path"`
	RequestDate          time.Time            `json:"request_date"`
}

// RequestRepayment opens an ordinary repayment invoice with the platform's
// standard settlement window.
func (u *Usecase) RequestRepayment(ctx context.Context, in RepaymentRequestInput) (*loanDomain.Repayment, error) {
	return u.requestRepayment(ctx, in, invoiceDomain.TypeLoanRepayment, func(cfg *platformDomain.Config) int {
		return cfg.RepaymentWindowDays
	})
}

// RequestEarlyRepayment charges the full remaining interest (no early-payoff
// discount) and opens a repayment invoice with the shorter early-settlement
// window.
func (u *Usecase) RequestEarlyRepayment(ctx context.Context, in RepaymentRequestInput) (*loanDomain.Repayment, error) {
	return u.requestRepayment(ctx, in, invoiceDomain.TypeLoanEarlyRepayment, func(cfg *platformDomain.Config) int {
		return cfg.EarlyRepaymentWindowDays
	})
}

func (u *Usecase) requestRepayment(ctx context.Context, in RepaymentRequestInput, invType invoiceDomain.Type, window func(*platformDomain.Config) int) (*loanDomain.Repayment, error) {
	invoiceID, err := u.gen.Next()
	if err != nil {
		return nil, err
	}

	var out *loanDomain.Repayment
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, in.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}
		if l.Status != loanDomain.StatusActive {
			return loanDomain.ErrInvalidTransition
		}

		cfg, err := r.Platform.LatestConfig(ctx, in.RequestDate)
		if err != nil {
			return err
		}
		requestDate := in.RequestDate.UTC()
		dueDate := requestDate.AddDate(0, 0, window(cfg))

		// a resubmitted request supersedes the previous pending invoice
		if prev, err := r.Loans.GetRepaymentByLoanID(ctx, l.ID); err == nil {
			if prev.ConcludedDate != nil {
				return loanDomain.ErrInvalidTransition
			}
			if inv, err := r.Invoices.GetByIDForUpdate(ctx, prev.RepaymentInvoiceID); err == nil && inv.Status == invoiceDomain.StatusPending {
				inv.Status = invoiceDomain.StatusCancelled
				inv.ExpiredDate = &requestDate
				if err := r.Invoices.Save(ctx, inv); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		borrower, err := borrowerOf(ctx, r, l)
		if err != nil {
			return err
		}
		if err := r.Invoices.Create(ctx, &invoiceDomain.Invoice{
			ID:                    invoiceID,
			UserID:                borrower,
			CurrencyBlockchainKey: l.PrincipalBlockchainKey,
			CurrencyTokenID:       l.PrincipalTokenID,
			InvoiceType:           invType,
			InvoicedAmount:        l.RepaymentAmount,
			PaidAmount:            money.Zero,
			WalletAddress:         strings.ToLower(in.WalletAddress),
			WalletDerivationPath:  in.WalletDerivationPath,
			Status:                invoiceDomain.StatusPending,
			InvoiceDate:           requestDate,
			DueDate:               &dueDate,
		}); err != nil {
			return err
		}

		rp := &loanDomain.Repayment{
			LoanID:               l.ID,
			RepaymentInitiator:   in.Initiator,
			RepaymentInvoiceID:   invoiceID,
			RepaymentInvoiceDate: requestDate,
		}
		if err := r.Loans.UpsertRepayment(ctx, rp); err != nil {
			return err
		}
		out = rp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// borrowerOf resolves the borrower behind a loan for invoice ownership.
func borrowerOf(ctx context.Context, r uow.Repos, l *loanDomain.Loan) (string, error) {
	a, err := r.Applications.GetByID(ctx, l.LoanApplicationID)
	if err != nil {
		return "", fmt.Errorf("application %d for loan %d: %w", l.LoanApplicationID, l.ID, err)
	}
	return a.BorrowerUserID, nil
}

// ConcludeRepayment marks a repayment settled outside the invoice flow,
// typically an administrative correction.
func (u *Usecase) ConcludeRepayment(ctx context.Context, loanID uint64, at time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rp, err := r.Loans.GetRepaymentByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != loanDomain.StatusActive {
			return loanDomain.ErrInvalidTransition
		}
		l.Status = loanDomain.StatusRepaid
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		at := at.UTC()
		rp.ConcludedDate = &at
		return r.Loans.UpsertRepayment(ctx, rp)
	})
}

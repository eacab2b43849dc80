package mysql

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	loanDomain "cryptolend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var loanAppSeq uint64

func makeLoan(status loanDomain.Status) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanOfferID:             1,
		LoanApplicationID:       atomic.AddUint64(&loanAppSeq, 1),
		PrincipalBlockchainKey:  "eth",
		PrincipalTokenID:        "0xtoken",
		PrincipalAmount:         "500000000",
		InterestAmount:          "50000000",
		RepaymentAmount:         "550000000",
		RedeliveryFeeAmount:     "0",
		RedeliveryAmount:        "0",
		PremiAmount:             "0",
		LiquidationFeeAmount:    "0",
		MinCollateralValuation:  "700000000",
		MCLtvRatio:              decimal.RequireFromString("0.85"),
		CollateralBlockchainKey: "eth",
		CollateralAmount:        "1000000000",
		Status:                  status,
		OriginationDate:         time.Now().UTC(),
		MaturityDate:            time.Now().UTC().AddDate(0, 12, 0),
	}
}

func TestLoanRepository_OneLoanPerApplication(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	first := makeLoan(loanDomain.StatusOriginated)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := makeLoan(loanDomain.StatusOriginated)
	dup.LoanApplicationID = first.LoanApplicationID
	if err := repo.Create(ctx, dup); !errors.Is(err, loanDomain.ErrAlreadyOriginated) {
		t.Fatalf("err = %v, want ErrAlreadyOriginated", err)
	}

	got, err := repo.GetByApplicationID(ctx, first.LoanApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("loan id = %d, want %d", got.ID, first.ID)
	}
}

func TestLoanRepository_ValuationUpsert(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(loanDomain.StatusActive)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	v := &loanDomain.Valuation{
		LoanID:                    l.ID,
		ExchangeRateID:            7,
		ValuationDate:             time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		LtvRatio:                  decimal.RequireFromString("0.60"),
		CollateralValuationAmount: "900000000",
	}
	if err := repo.UpsertValuation(ctx, v); err != nil {
		t.Fatalf("UpsertValuation: %v", err)
	}

	// same (loan, rate) key replaces instead of duplicating
	v2 := &loanDomain.Valuation{
		LoanID:                    l.ID,
		ExchangeRateID:            7,
		ValuationDate:             time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		LtvRatio:                  decimal.RequireFromString("0.72"),
		CollateralValuationAmount: "800000000",
	}
	if err := repo.UpsertValuation(ctx, v2); err != nil {
		t.Fatalf("UpsertValuation replace: %v", err)
	}

	var count int64
	if err := db.Model(&loanDomain.Valuation{}).Where("loan_id = ?", l.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("valuation rows = %d, want 1", count)
	}

	latest, err := repo.LatestValuation(ctx, l.ID)
	if err != nil {
		t.Fatalf("LatestValuation: %v", err)
	}
	if !latest.LtvRatio.Equal(decimal.RequireFromString("0.72")) {
		t.Fatalf("latest ltv = %s", latest.LtvRatio)
	}
}

func TestLoanRepository_SecondLiquidationFails(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(loanDomain.StatusActive)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	lq := &loanDomain.Liquidation{
		LoanID:                  l.ID,
		LiquidationInitiator:    loanDomain.InitiatorPlatform,
		LiquidationTargetAmount: "550000000",
		MarketProvider:          "binance",
		MarketSymbol:            "ETHUSDT",
		OrderRef:                "ord-1",
		Status:                  loanDomain.LiquidationPending,
		OrderDate:               time.Now().UTC(),
	}
	if err := repo.CreateLiquidation(ctx, lq); err != nil {
		t.Fatalf("CreateLiquidation: %v", err)
	}

	again := *lq
	again.ID = 0
	again.OrderRef = "ord-2"
	if err := repo.CreateLiquidation(ctx, &again); !errors.Is(err, loanDomain.ErrLiquidationExists) {
		t.Fatalf("second liquidation: got %v, want ErrLiquidationExists", err)
	}
}

func TestLoanRepository_RepaymentUpsertByLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(loanDomain.StatusActive)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rp := &loanDomain.Repayment{
		LoanID:               l.ID,
		RepaymentInitiator:   loanDomain.InitiatorBorrower,
		RepaymentInvoiceID:   100,
		RepaymentInvoiceDate: time.Now().UTC(),
	}
	if err := repo.UpsertRepayment(ctx, rp); err != nil {
		t.Fatalf("UpsertRepayment: %v", err)
	}

	resub := &loanDomain.Repayment{
		LoanID:               l.ID,
		RepaymentInitiator:   loanDomain.InitiatorBorrower,
		RepaymentInvoiceID:   101,
		RepaymentInvoiceDate: time.Now().UTC(),
	}
	if err := repo.UpsertRepayment(ctx, resub); err != nil {
		t.Fatalf("UpsertRepayment resubmit: %v", err)
	}

	got, err := repo.GetRepaymentByLoanID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetRepaymentByLoanID: %v", err)
	}
	if got.RepaymentInvoiceID != 101 {
		t.Fatalf("repayment invoice = %d, want 101 (upserted)", got.RepaymentInvoiceID)
	}

	var count int64
	if err := db.Model(&loanDomain.Repayment{}).Where("loan_id = ?", l.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("repayment rows = %d, want 1", count)
	}
}

func TestLoanRepository_ListLtvBreaches(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	mk := func(status loanDomain.Status, ltv string) {
		l := makeLoan(status)
		if ltv != "" {
			d := decimal.RequireFromString(ltv)
			l.CurrentLtvRatio = &d
		}
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mk(loanDomain.StatusActive, "0.87")
	mk(loanDomain.StatusActive, "0.60")
	mk(loanDomain.StatusOriginated, "0.91")
	mk(loanDomain.StatusRepaid, "0.99") // terminal, never scanned
	mk(loanDomain.StatusActive, "")     // no valuation yet

	breaches, scanned, err := repo.ListLtvBreaches(ctx, decimal.RequireFromString("0.75"))
	if err != nil {
		t.Fatalf("ListLtvBreaches: %v", err)
	}
	if scanned != 4 {
		t.Fatalf("scanned = %d, want 4", scanned)
	}
	if len(breaches) != 2 {
		t.Fatalf("breaches = %d, want 2", len(breaches))
	}
	if !breaches[0].CurrentLtvRatio.Equal(decimal.RequireFromString("0.91")) {
		t.Fatalf("breaches not ordered descending: %+v", breaches)
	}
}

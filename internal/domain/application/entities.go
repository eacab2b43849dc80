package application

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("loan application not found")
	ErrNotPublished      = errors.New("loan application is not published")
	ErrNotMatched        = errors.New("loan application is not matched")
	ErrInvalidTransition = errors.New("invalid loan application transition")
	ErrSelfMatch         = errors.New("borrower and lender must differ")
)

type Status string

const (
	StatusPendingCollateral Status = "pending_collateral"
	StatusPublished         Status = "published"
	StatusMatched           Status = "matched"
	StatusCancelled         Status = "cancelled"
	StatusClosed            Status = "closed"
	StatusExpired           Status = "expired"
)

type LiquidationMode string

const (
	LiquidationPartial LiquidationMode = "partial"
	LiquidationFull    LiquidationMode = "full"
)

type LoanApplication struct {
	ID                               uint64           `gorm:"primaryKey;column:id" json:"application_id"`
	BorrowerUserID                   string           `gorm:"size:32;index:idx_loan_applications_borrower" json:"borrower_user_id"`
	PrincipalBlockchainKey           string           `gorm:"size:32" json:"principal_blockchain_key"`
	PrincipalTokenID                 string           `gorm:"size:128" json:"principal_token_id"`
	PrincipalAmount                  string           `gorm:"size:80" json:"principal_amount"`
	ProvisionAmount                  string           `gorm:"size:80" json:"provision_amount"`
	MaxInterestRate                  decimal.Decimal  `gorm:"type:decimal(10,6)" json:"max_interest_rate"`
	MinLtvRatio                      decimal.Decimal  `gorm:"type:decimal(10,6)" json:"min_ltv_ratio"`
	MaxLtvRatio                      decimal.Decimal  `gorm:"type:decimal(10,6)" json:"max_ltv_ratio"`
	TermInMonths                     int              `json:"term_in_months"`
	LiquidationMode                  LiquidationMode  `gorm:"size:16" json:"liquidation_mode"`
	CollateralBlockchainKey          string           `gorm:"size:32" json:"collateral_blockchain_key"`
	CollateralTokenID                string           `gorm:"size:128" json:"collateral_token_id"`
	CollateralDepositAmount          string           `gorm:"size:80" json:"collateral_deposit_amount"`
	CollateralDepositExchangeRateID  uint64           `json:"collateral_deposit_exchange_rate_id"`
	CollateralInvoiceID              int64            `gorm:"index:idx_loan_applications_collateral_invoice" json:"collateral_invoice_id"`
	Status                           Status           `gorm:"size:24;index:idx_loan_applications_status" json:"status"`
	AppliedDate                      time.Time        `json:"applied_date"`
	ExpiredDate                      time.Time        `json:"expired_date"`
	PublishedDate                    *time.Time       `json:"published_date,omitempty"`
	MatchedDate                      *time.Time       `json:"matched_date,omitempty"`
	MatchedLoanOfferID               *uint64          `json:"matched_loan_offer_id,omitempty"`
	MatchedLtvRatio                  *decimal.Decimal `gorm:"type:decimal(10,6)" json:"matched_ltv_ratio,omitempty"`
	MatchedCollateralValuationAmount *string          `gorm:"size:80" json:"matched_collateral_valuation_amount,omitempty"`
	ClosedDate                       *time.Time       `json:"closed_date,omitempty"`
	ClosureReason                    string           `gorm:"size:128" json:"closure_reason,omitempty"`
	CreatedAt                        time.Time        `gorm:"autoCreateTime" json:"-"`
	UpdatedAt                        time.Time        `gorm:"autoUpdateTime" json:"-"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

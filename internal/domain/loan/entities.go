package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan transition")
	ErrLiquidationExists = errors.New("liquidation already exists for loan")
	ErrAlreadyOriginated = errors.New("loan already originated for application")
	ErrStaleValuation    = errors.New("valuation older than latest recorded valuation")
	ErrAcknowledgment    = errors.New("borrower acknowledgment required")
)

type Status string

const (
	StatusOriginated Status = "originated"
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
	StatusDefaulted  Status = "defaulted"
)

type Initiator string

const (
	InitiatorPlatform Initiator = "platform"
	InitiatorBorrower Initiator = "borrower"
)

// Loan is created only from a matched application and a published offer.
// All monetary terms arrive precomputed from the pricing collaborator and
// are stored verbatim.
type Loan struct {
	ID                      uint64           `gorm:"primaryKey;column:id" json:"loan_id"`
	LoanOfferID             uint64           `gorm:"index:idx_loans_offer" json:"loan_offer_id"`
	LoanApplicationID       uint64           `gorm:"uniqueIndex:ux_loans_application" json:"loan_application_id"`
	PrincipalBlockchainKey  string           `gorm:"size:32" json:"principal_blockchain_key"`
	PrincipalTokenID        string           `gorm:"size:128" json:"principal_token_id"`
	PrincipalAmount         string           `gorm:"size:80" json:"principal_amount"`
	InterestAmount          string           `gorm:"size:80" json:"interest_amount"`
	RepaymentAmount         string           `gorm:"size:80" json:"repayment_amount"`
	RedeliveryFeeAmount     string           `gorm:"size:80" json:"redelivery_fee_amount"`
	RedeliveryAmount        string           `gorm:"size:80" json:"redelivery_amount"`
	PremiAmount             string           `gorm:"size:80" json:"premi_amount"`
	LiquidationFeeAmount    string           `gorm:"size:80" json:"liquidation_fee_amount"`
	MinCollateralValuation  string           `gorm:"size:80" json:"min_collateral_valuation"`
	MCLtvRatio              decimal.Decimal  `gorm:"type:decimal(10,6)" json:"mc_ltv_ratio"`
	CurrentLtvRatio         *decimal.Decimal `gorm:"type:decimal(10,6)" json:"current_ltv_ratio,omitempty"`
	CollateralBlockchainKey string           `gorm:"size:32" json:"collateral_blockchain_key"`
	CollateralTokenID       string           `gorm:"size:128" json:"collateral_token_id"`
	CollateralAmount        string           `gorm:"size:80" json:"collateral_amount"`
	LegalDocumentPath       string           `gorm:"size:256" json:"legal_document_path,omitempty"`
	LegalDocumentHash       string           `gorm:"size:128" json:"legal_document_hash,omitempty"`
	Status                  Status           `gorm:"size:16;index:idx_loans_status" json:"status"`
	OriginationDate         time.Time        `json:"origination_date"`
	MaturityDate            time.Time        `json:"maturity_date"`
	DisbursementDate        *time.Time       `json:"disbursement_date,omitempty"`
	CreatedAt               time.Time        `gorm:"autoCreateTime" json:"-"`
	UpdatedAt               time.Time        `gorm:"autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Valuation is upserted by (loan_id, exchange_rate_id); writing one also
// overwrites the loan's current LTV ratio.
type Valuation struct {
	ID                        uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID                    uint64          `gorm:"uniqueIndex:ux_loan_valuations_rate" json:"loan_id"`
	ExchangeRateID            uint64          `gorm:"uniqueIndex:ux_loan_valuations_rate" json:"exchange_rate_id"`
	ValuationDate             time.Time       `json:"valuation_date"`
	LtvRatio                  decimal.Decimal `gorm:"type:decimal(10,6)" json:"ltv_ratio"`
	CollateralValuationAmount string          `gorm:"size:80" json:"collateral_valuation_amount"`
	CreatedAt                 time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt                 time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (Valuation) TableName() string { return "loan_valuations" }

type LiquidationStatus string

const (
	LiquidationPending   LiquidationStatus = "pending"
	LiquidationExecuted  LiquidationStatus = "executed"
	LiquidationCancelled LiquidationStatus = "cancelled"
)

// Liquidation is insert-only and unique per loan; a second request must
// fail, never upsert.
type Liquidation struct {
	ID                      uint64            `gorm:"primaryKey;column:id" json:"-"`
	LoanID                  uint64            `gorm:"uniqueIndex:ux_loan_liquidations_loan" json:"loan_id"`
	LiquidationInitiator    Initiator         `gorm:"size:16" json:"liquidation_initiator"`
	LiquidationTargetAmount string            `gorm:"size:80" json:"liquidation_target_amount"`
	MarketProvider          string            `gorm:"size:64" json:"market_provider"`
	MarketSymbol            string            `gorm:"size:32" json:"market_symbol"`
	OrderRef                string            `gorm:"size:64" json:"order_ref"`
	OrderQuantity           *string           `gorm:"size:80" json:"order_quantity,omitempty"`
	OrderPrice              *decimal.Decimal  `gorm:"type:decimal(24,8)" json:"order_price,omitempty"`
	Status                  LiquidationStatus `gorm:"size:16" json:"status"`
	OrderDate               time.Time         `json:"order_date"`
	Acknowledged            bool              `json:"acknowledged"`
	CreatedAt               time.Time         `gorm:"autoCreateTime" json:"-"`
	UpdatedAt               time.Time         `gorm:"autoUpdateTime" json:"-"`
}

func (Liquidation) TableName() string { return "loan_liquidations" }

// Repayment holds at most one live row per loan and is upserted on
// resubmission.
type Repayment struct {
	ID                   uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID               uint64     `gorm:"uniqueIndex:ux_loan_repayments_loan" json:"loan_id"`
	RepaymentInitiator   Initiator  `gorm:"size:16" json:"repayment_initiator"`
	RepaymentInvoiceID   int64      `gorm:"index:idx_loan_repayments_invoice" json:"repayment_invoice_id"`
	RepaymentInvoiceDate time.Time  `json:"repayment_invoice_date"`
	Acknowledged         bool       `json:"acknowledged"`
	ConcludedDate        *time.Time `json:"concluded_date,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (Repayment) TableName() string { return "loan_repayments" }

// LtvBreach is one row of the monitoring report.
type LtvBreach struct {
	LoanID          uint64          `json:"loan_id"`
	Status          Status          `json:"status"`
	CurrentLtvRatio decimal.Decimal `json:"current_ltv_ratio"`
	MCLtvRatio      decimal.Decimal `json:"mc_ltv_ratio"`
}

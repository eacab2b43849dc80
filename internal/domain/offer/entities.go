package offer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("loan offer not found")
	ErrNotPublished          = errors.New("loan offer is not published")
	ErrInvalidTransition     = errors.New("invalid loan offer transition")
	ErrInsufficientAvailable = errors.New("insufficient available principal")
)

type Status string

const (
	StatusFunding   Status = "funding"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusExpired   Status = "expired"
)

// LoanOffer invariant: OfferedPrincipalAmount is always the sum of the
// available, reserved and disbursed amounts.
type LoanOffer struct {
	ID                       uint64          `gorm:"primaryKey;column:id" json:"offer_id"`
	LenderUserID             string          `gorm:"size:32;index:idx_loan_offers_lender" json:"lender_user_id"`
	PrincipalBlockchainKey   string          `gorm:"size:32" json:"principal_blockchain_key"`
	PrincipalTokenID         string          `gorm:"size:128" json:"principal_token_id"`
	OfferedPrincipalAmount   string          `gorm:"size:80" json:"offered_principal_amount"`
	AvailablePrincipalAmount string          `gorm:"size:80" json:"available_principal_amount"`
	ReservedPrincipalAmount  string          `gorm:"size:80" json:"reserved_principal_amount"`
	DisbursedPrincipalAmount string          `gorm:"size:80" json:"disbursed_principal_amount"`
	MinLoanPrincipalAmount   string          `gorm:"size:80" json:"min_loan_principal_amount"`
	MaxLoanPrincipalAmount   string          `gorm:"size:80" json:"max_loan_principal_amount"`
	InterestRate             decimal.Decimal `gorm:"type:decimal(10,6)" json:"interest_rate"`
	TermOptions              string          `gorm:"size:64" json:"term_in_months_options"`
	FundingInvoiceID         int64           `gorm:"index:idx_loan_offers_funding_invoice" json:"funding_invoice_id"`
	Status                   Status          `gorm:"size:16;index:idx_loan_offers_status" json:"status"`
	CreatedDate              time.Time       `json:"created_date"`
	ExpiredDate              time.Time       `json:"expired_date"`
	PublishedDate            *time.Time      `json:"published_date,omitempty"`
	ClosedDate               *time.Time      `json:"closed_date,omitempty"`
	ClosureReason            string          `gorm:"size:128" json:"closure_reason,omitempty"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt                time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (LoanOffer) TableName() string { return "loan_offers" }

// TermMonths parses the comma-separated term options column.
func (o *LoanOffer) TermMonths() []int {
	if o.TermOptions == "" {
		return nil
	}
	parts := strings.Split(o.TermOptions, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// JoinTermMonths renders term options for storage.
func JoinTermMonths(months []int) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

package invoice

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("invoice not found")
	ErrNotPending       = errors.New("invoice is not pending")
	ErrCurrencyMismatch = errors.New("payment currency does not match invoice")
	ErrDuplicatePayment = errors.New("payment already recorded for invoice")
)

type Type string

const (
	TypeLoanCollateral     Type = "loan_collateral"
	TypeLoanPrincipal      Type = "loan_principal"
	TypeLoanRepayment      Type = "loan_repayment"
	TypeLoanEarlyRepayment Type = "loan_early_repayment"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Invoice is an expected-deposit record. Its id is generated up-front so a
// deposit address can be derived before the row is inserted; gorm therefore
// never auto-assigns it.
type Invoice struct {
	ID                    int64      `gorm:"primaryKey;autoIncrement:false;column:id" json:"invoice_id"`
	UserID                string     `gorm:"size:32;index:idx_invoices_user" json:"user_id"`
	CurrencyBlockchainKey string     `gorm:"size:32" json:"currency_blockchain_key"`
	CurrencyTokenID       string     `gorm:"size:128" json:"currency_token_id"`
	InvoiceType           Type       `gorm:"size:32" json:"invoice_type"`
	InvoicedAmount        string     `gorm:"size:80" json:"invoiced_amount"`
	PaidAmount            string     `gorm:"size:80" json:"paid_amount"`
	WalletAddress         string     `gorm:"size:128;index:idx_invoices_wallet" json:"wallet_address"`
	WalletDerivationPath  string     `gorm:"size:128" json:"wallet_derivation_path"`
	Status                Status     `gorm:"size:16;index:idx_invoices_status" json:"status"`
	InvoiceDate           time.Time  `json:"invoice_date"`
	DueDate               *time.Time `json:"due_date,omitempty"`
	ExpiredDate           *time.Time `json:"expired_date,omitempty"`
	PaidDate              *time.Time `json:"paid_date,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (Invoice) TableName() string { return "invoices" }

// Payment records one matched on-chain transfer. The (invoice_id,
// payment_hash) pair is the replay-safety boundary: redelivered detections
// must collide here instead of crediting twice.
type Payment struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	InvoiceID   int64     `gorm:"uniqueIndex:ux_invoice_payments_hash" json:"invoice_id"`
	PaymentHash string    `gorm:"size:128;uniqueIndex:ux_invoice_payments_hash" json:"payment_hash"`
	Amount      string    `gorm:"size:80" json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Payment) TableName() string { return "invoice_payments" }

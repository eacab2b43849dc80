package withdrawal

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("withdrawal not found")
	ErrBeneficiaryNotFound = errors.New("withdrawal beneficiary not found")
	ErrInvalidTransition   = errors.New("invalid withdrawal transition")
	ErrNotFailed           = errors.New("withdrawal is not failed")
	ErrTerminal            = errors.New("withdrawal already in terminal state")
	ErrInsufficientBalance = errors.New("insufficient balance for withdrawal")
)

type Status string

const (
	StatusRequested      Status = "requested"
	StatusSent           Status = "sent"
	StatusConfirmed      Status = "confirmed"
	StatusFailed         Status = "failed"
	StatusRefundApproved Status = "refund_approved"
	StatusRefundRejected Status = "refund_rejected"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusRefundApproved, StatusRefundRejected:
		return true
	}
	return false
}

// Beneficiary must be registered before any withdrawal referencing it.
type Beneficiary struct {
	ID                    uint64    `gorm:"primaryKey;column:id" json:"-"`
	BeneficiaryID         string    `gorm:"size:32;uniqueIndex:ux_withdrawal_beneficiaries_public" json:"beneficiary_id"`
	UserID                string    `gorm:"size:32;uniqueIndex:ux_withdrawal_beneficiaries_addr" json:"user_id"`
	CurrencyBlockchainKey string    `gorm:"size:32;uniqueIndex:ux_withdrawal_beneficiaries_addr" json:"currency_blockchain_key"`
	CurrencyTokenID       string    `gorm:"size:128;uniqueIndex:ux_withdrawal_beneficiaries_addr" json:"currency_token_id"`
	Address               string    `gorm:"size:128;uniqueIndex:ux_withdrawal_beneficiaries_addr" json:"address"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Beneficiary) TableName() string { return "withdrawal_beneficiaries" }

type Withdrawal struct {
	ID                        uint64     `gorm:"primaryKey;column:id" json:"-"`
	WithdrawalID              string     `gorm:"size:32;uniqueIndex:ux_withdrawals_public" json:"withdrawal_id"`
	BeneficiaryID             uint64     `gorm:"index:idx_withdrawals_beneficiary" json:"beneficiary_id"`
	Amount                    string     `gorm:"size:80" json:"amount"`
	RequestAmount             string     `gorm:"size:80" json:"request_amount"`
	Status                    Status     `gorm:"size:24;index:idx_withdrawals_status" json:"status"`
	RequestDate               time.Time  `json:"request_date"`
	SentAmount                *string    `gorm:"size:80" json:"sent_amount,omitempty"`
	SentHash                  *string    `gorm:"size:128" json:"sent_hash,omitempty"`
	SentDate                  *time.Time `json:"sent_date,omitempty"`
	ConfirmedDate             *time.Time `json:"confirmed_date,omitempty"`
	FailedDate                *time.Time `json:"failed_date,omitempty"`
	FailureReason             string     `gorm:"size:256" json:"failure_reason,omitempty"`
	FailureRefundApprovedDate *time.Time `json:"failure_refund_approved_date,omitempty"`
	FailureRefundRejectedDate *time.Time `json:"failure_refund_rejected_date,omitempty"`
	CreatedAt                 time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt                 time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }

package account

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("account not found")

type Type string

const (
	TypeMain       Type = "main"
	TypeCollateral Type = "collateral"
	TypeLending    Type = "lending"
)

type MutationType string

const (
	MutationDeposit          MutationType = "deposit"
	MutationWithdrawal       MutationType = "withdrawal"
	MutationWithdrawalRefund MutationType = "withdrawal_refund"
	MutationDisbursement     MutationType = "disbursement"
	MutationRepayment        MutationType = "repayment"
	MutationLiquidation      MutationType = "liquidation"
)

// Account holds no balance column. The balance of an account is defined as
// the sum of its mutation entries and is always derived at read time.
type Account struct {
	ID                    uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID                string    `gorm:"size:32;uniqueIndex:ux_accounts_owner" json:"user_id"`
	CurrencyBlockchainKey string    `gorm:"size:32;uniqueIndex:ux_accounts_owner" json:"currency_blockchain_key"`
	CurrencyTokenID       string    `gorm:"size:128;uniqueIndex:ux_accounts_owner" json:"currency_token_id"`
	AccountType           Type      `gorm:"size:16;uniqueIndex:ux_accounts_owner" json:"account_type"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Account) TableName() string { return "accounts" }

// MutationEntry is append-only: entries are never edited or removed once
// written. Amount is a signed integer string in the currency's smallest unit.
type MutationEntry struct {
	ID           uint64       `gorm:"primaryKey;column:id" json:"-"`
	AccountID    uint64       `gorm:"index:idx_account_mutations_account" json:"account_id"`
	MutationType MutationType `gorm:"size:32" json:"mutation_type"`
	MutationDate time.Time    `gorm:"index:idx_account_mutations_date" json:"mutation_date"`
	Amount       string       `gorm:"size:80" json:"amount"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (MutationEntry) TableName() string { return "account_mutation_entries" }

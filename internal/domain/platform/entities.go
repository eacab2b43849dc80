package platform

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNoConfig = errors.New("no platform config effective at date")
	ErrNoRate   = errors.New("no exchange rate sourced at or before date")
)

// Config rows are versioned by effective date; lookups take the most recent
// row with effective_date <= asOf.
type Config struct {
	ID                       uint64          `gorm:"primaryKey;column:id" json:"-"`
	EffectiveDate            time.Time       `gorm:"index:idx_platform_configs_effective" json:"effective_date"`
	LoanMaxLtvRatio          decimal.Decimal `gorm:"type:decimal(10,6)" json:"loan_max_ltv_ratio"`
	LoanMinLtvRatio          decimal.Decimal `gorm:"type:decimal(10,6)" json:"loan_min_ltv_ratio"`
	ProvisionRate            decimal.Decimal `gorm:"type:decimal(10,6)" json:"provision_rate"`
	RepaymentWindowDays      int             `json:"repayment_window_days"`
	EarlyRepaymentWindowDays int             `json:"early_repayment_window_days"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"-"`
}

func (Config) TableName() string { return "platform_configs" }

// ExchangeRate is one bid/ask observation from a price source, versioned by
// source date.
type ExchangeRate struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"exchange_rate_id"`
	BlockchainKey string          `gorm:"size:32;index:idx_exchange_rates_pair" json:"blockchain_key"`
	BaseSymbol    string          `gorm:"size:16;index:idx_exchange_rates_pair" json:"base_symbol"`
	QuoteSymbol   string          `gorm:"size:16;index:idx_exchange_rates_pair" json:"quote_symbol"`
	Source        string          `gorm:"size:64" json:"source"`
	Bid           decimal.Decimal `gorm:"type:decimal(24,8)" json:"bid"`
	Ask           decimal.Decimal `gorm:"type:decimal(24,8)" json:"ask"`
	RetrievalDate time.Time       `json:"retrieval_date"`
	SourceDate    time.Time       `gorm:"index:idx_exchange_rates_source_date" json:"source_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"-"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }

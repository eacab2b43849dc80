package currency

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("currency not found")

// Currency is a platform-supported asset. TokenID is empty for a chain's
// native coin and holds the contract address for tokens.
type Currency struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	BlockchainKey string    `gorm:"size:32;uniqueIndex:ux_currencies_chain_token" json:"blockchain_key"`
	TokenID       string    `gorm:"size:128;uniqueIndex:ux_currencies_chain_token" json:"token_id"`
	Decimals      int       `json:"decimals"`
	Symbol        string    `gorm:"size:16" json:"symbol"`
	Name          string    `gorm:"size:64" json:"name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Currency) TableName() string { return "currencies" }

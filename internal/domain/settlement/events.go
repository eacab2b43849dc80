package settlement

import "time"

// DetectedTransaction is the normalized deposit event a chain watcher emits
// when a transfer lands on a watched address. Delivery downstream is
// at-least-once; consumers must stay idempotent.
type DetectedTransaction struct {
	BlockchainKey        string    `json:"blockchain_key"`
	TokenID              string    `json:"token_id"`
	WalletDerivationPath string    `json:"wallet_derivation_path"`
	WalletAddress        string    `json:"wallet_address"`
	TransactionHash      string    `json:"transaction_hash"`
	Sender               string    `json:"sender"`
	Amount               string    `json:"amount"`
	DetectedAt           time.Time `json:"detected_at"`
}

type AddressEventType string

const (
	AddressAdded   AddressEventType = "address_added"
	AddressRemoved AddressEventType = "address_removed"
)

// AddressEvent updates a watcher's watched-address set.
type AddressEvent struct {
	Type        AddressEventType `json:"type"`
	TokenID     string           `json:"token_id"`
	Address     string           `json:"address"`
	DerivedPath string           `json:"derived_path"`
}

// Package tipping defines the core domain model for the tipping platform:
// tip requests, per-account aggregate statistics, settlement receipts, and
// the platform rules governing fees and rewards.
package tipping

import "time"

// Asset tags accepted by the reference deployment.
const (
	AssetSTX = "STX"
	AssetBTC = "BTC"
)

// TipRequest describes a single tip before validation. Amounts are in minor
// units of the named asset.
type TipRequest struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Asset     string `json:"asset"`
}

// UserStats is the per-account aggregate record. An account with no recorded
// activity reads as the zero value.
type UserStats struct {
	Account       string    `json:"account"`
	TotalSent     uint64    `json:"total_sent"`
	TotalReceived uint64    `json:"total_received"`
	RewardPoints  uint64    `json:"reward_points"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// Receipt journals one accepted tip. Gross is the amount the sender paid,
// Net what the recipient received, Fee what the platform collected;
// Net + Fee == Gross holds for every receipt.
type Receipt struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Asset     string    `json:"asset"`
	Gross     uint64    `json:"gross"`
	Fee       uint64    `json:"fee"`
	Net       uint64    `json:"net"`
	CreatedAt time.Time `json:"created_at"`
}

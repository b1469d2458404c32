// Package storage defines the persistence interfaces for the tipping
// platform. Implementations must keep per-account read-modify-write cycles
// linearizable and apply multi-row updates all-or-nothing.
package storage

import (
	"context"

	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/identity"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
)

// StatsStore persists per-account aggregate statistics. Records are created
// lazily on first write; a read of an absent account returns the zero-valued
// record, never an error.
type StatsStore interface {
	GetStats(ctx context.Context, account string) (tipping.UserStats, error)

	// RecordTip adds gross to the sender's total_sent, net to the
	// recipient's total_received, and points to the sender's reward
	// points. All three update or none does.
	RecordTip(ctx context.Context, sender, recipient string, gross, net, points uint64) error

	// AddRewardPoints increments an account's reward points.
	AddRewardPoints(ctx context.Context, account string, points uint64) error
}

// IdentityStore persists username bindings. The username space is globally
// unique: SetIdentity must check-then-insert atomically and return
// tipping.ErrUsernameTaken when the name is already bound to a different
// account. An account re-registering overwrites its previous binding and
// releases the old name in the same step.
type IdentityStore interface {
	GetIdentity(ctx context.Context, account string) (identity.Identity, bool, error)
	SetIdentity(ctx context.Context, account, username string) (identity.Identity, error)
}

// TipStore journals accepted tips.
type TipStore interface {
	CreateReceipt(ctx context.Context, receipt tipping.Receipt) (tipping.Receipt, error)

	// ListReceipts returns the most recent receipts in which the account was
	// sender or recipient, newest first.
	ListReceipts(ctx context.Context, account string, limit int) ([]tipping.Receipt, error)
}

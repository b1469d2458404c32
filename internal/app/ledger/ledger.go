// Package ledger abstracts the settlement layer that actually moves value
// between accounts. The tipping service trusts each transfer to apply
// atomically: it either fully moves the amount or fails with no effect.
package ledger

import (
	"context"
	"errors"
)

// ErrInsufficientBalance is returned when the source account cannot cover
// the transfer.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger moves a quantity of an asset between two accounts.
type Ledger interface {
	Transfer(ctx context.Context, asset, from, to string, amount uint64) error
}

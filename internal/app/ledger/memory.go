package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is an in-process settlement ledger keyed by asset and
// account. It backs local development and tests; production deployments
// plug a chain-backed implementation instead.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]map[string]uint64)}
}

// Credit adds funds to an account, creating the asset lane on first use.
func (l *MemoryLedger) Credit(asset, account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lane, ok := l.balances[asset]
	if !ok {
		lane = make(map[string]uint64)
		l.balances[asset] = lane
	}
	lane[account] += amount
}

// Balance returns the current balance of an account in an asset lane.
func (l *MemoryLedger) Balance(asset, account string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][account]
}

// Transfer moves amount from one account to another. It fails as a unit:
// on any error neither balance changes.
func (l *MemoryLedger) Transfer(_ context.Context, asset, from, to string, amount uint64) error {
	if from == to {
		return fmt.Errorf("transfer from %s to itself", from)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lane, ok := l.balances[asset]
	if !ok || lane[from] < amount {
		return fmt.Errorf("%w: account %s holds %d %s, needs %d",
			ErrInsufficientBalance, from, lane[from], asset, amount)
	}

	lane[from] -= amount
	lane[to] += amount
	return nil
}

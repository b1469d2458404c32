// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/identity"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage"
)

// Store keeps all records in maps guarded by one RWMutex, so every
// operation is linearizable with respect to the accounts it touches. The
// identities and usernames maps are the paired forward/reverse indexes;
// they are only ever updated together under the write lock.
type Store struct {
	mu         sync.RWMutex
	stats      map[string]tipping.UserStats
	identities map[string]identity.Identity
	usernames  map[string]string
	receipts   []tipping.Receipt
}

var _ storage.StatsStore = (*Store)(nil)
var _ storage.IdentityStore = (*Store)(nil)
var _ storage.TipStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		stats:      make(map[string]tipping.UserStats),
		identities: make(map[string]identity.Identity),
		usernames:  make(map[string]string),
	}
}

// StatsStore implementation --------------------------------------------------

func (s *Store) GetStats(_ context.Context, account string) (tipping.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.stats[account]; ok {
		return rec, nil
	}
	return tipping.UserStats{Account: account}, nil
}

func (s *Store) RecordTip(_ context.Context, sender, recipient string, gross, net, points uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	sent := s.statsLocked(sender)
	sent.TotalSent += gross
	sent.RewardPoints += points
	sent.UpdatedAt = now
	s.stats[sender] = sent

	received := s.statsLocked(recipient)
	received.TotalReceived += net
	received.UpdatedAt = now
	s.stats[recipient] = received

	return nil
}

func (s *Store) AddRewardPoints(_ context.Context, account string, points uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.statsLocked(account)
	rec.RewardPoints += points
	rec.UpdatedAt = time.Now().UTC()
	s.stats[account] = rec
	return nil
}

func (s *Store) statsLocked(account string) tipping.UserStats {
	if rec, ok := s.stats[account]; ok {
		return rec
	}
	return tipping.UserStats{Account: account}
}

// IdentityStore implementation -----------------------------------------------

func (s *Store) GetIdentity(_ context.Context, account string) (identity.Identity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.identities[account]
	return id, ok, nil
}

func (s *Store) SetIdentity(_ context.Context, account, username string) (identity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if holder, taken := s.usernames[username]; taken && holder != account {
		return identity.Identity{}, tipping.ErrUsernameTaken
	}

	if previous, ok := s.identities[account]; ok && previous.Username != username {
		delete(s.usernames, previous.Username)
	}

	id := identity.Identity{
		Account:   account,
		Username:  username,
		Verified:  true,
		UpdatedAt: time.Now().UTC(),
	}
	s.identities[account] = id
	s.usernames[username] = account
	return id, nil
}

// TipStore implementation ----------------------------------------------------

func (s *Store) CreateReceipt(_ context.Context, receipt tipping.Receipt) (tipping.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now().UTC()
	}
	s.receipts = append(s.receipts, receipt)
	return receipt, nil
}

func (s *Store) ListReceipts(_ context.Context, account string, limit int) ([]tipping.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tipping.Receipt
	for i := len(s.receipts) - 1; i >= 0; i-- {
		r := s.receipts[i]
		if r.Sender != account && r.Recipient != account {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

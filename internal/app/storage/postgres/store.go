// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/identity"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage"
)

// uniqueViolation is the PostgreSQL error code raised when the username
// index rejects a duplicate.
const uniqueViolation = "23505"

// Store implements the storage interfaces using a database handle.
type Store struct {
	db *sql.DB
}

var _ storage.StatsStore = (*Store)(nil)
var _ storage.IdentityStore = (*Store)(nil)
var _ storage.TipStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- StatsStore -------------------------------------------------------------

func (s *Store) GetStats(ctx context.Context, account string) (tipping.UserStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT account, total_sent, total_received, reward_points, updated_at
		FROM tip_stats
		WHERE account = $1
	`, account)

	var (
		rec                 tipping.UserStats
		sent, received, pts int64
	)
	err := row.Scan(&rec.Account, &sent, &received, &pts, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return tipping.UserStats{Account: account}, nil
	}
	if err != nil {
		return tipping.UserStats{}, err
	}
	rec.TotalSent = uint64(sent)
	rec.TotalReceived = uint64(received)
	rec.RewardPoints = uint64(pts)
	return rec, nil
}

func (s *Store) RecordTip(ctx context.Context, sender, recipient string, gross, net, points uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tip_stats (account, total_sent, total_received, reward_points, updated_at)
		VALUES ($1, $2, 0, $3, $4)
		ON CONFLICT (account) DO UPDATE
		SET total_sent = tip_stats.total_sent + EXCLUDED.total_sent,
		    reward_points = tip_stats.reward_points + EXCLUDED.reward_points,
		    updated_at = EXCLUDED.updated_at
	`, sender, int64(gross), int64(points), now)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tip_stats (account, total_sent, total_received, reward_points, updated_at)
		VALUES ($1, 0, $2, 0, $3)
		ON CONFLICT (account) DO UPDATE
		SET total_received = tip_stats.total_received + EXCLUDED.total_received, updated_at = EXCLUDED.updated_at
	`, recipient, int64(net), now)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) AddRewardPoints(ctx context.Context, account string, points uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tip_stats (account, total_sent, total_received, reward_points, updated_at)
		VALUES ($1, 0, 0, $2, $3)
		ON CONFLICT (account) DO UPDATE
		SET reward_points = tip_stats.reward_points + EXCLUDED.reward_points, updated_at = EXCLUDED.updated_at
	`, account, int64(points), time.Now().UTC())
	return err
}

// --- IdentityStore ----------------------------------------------------------

func (s *Store) GetIdentity(ctx context.Context, account string) (identity.Identity, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT account, username, verified, updated_at
		FROM identities
		WHERE account = $1
	`, account)

	var id identity.Identity
	err := row.Scan(&id.Account, &id.Username, &id.Verified, &id.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Identity{}, false, nil
	}
	if err != nil {
		return identity.Identity{}, false, err
	}
	return id, true, nil
}

func (s *Store) SetIdentity(ctx context.Context, account, username string) (identity.Identity, error) {
	id := identity.Identity{
		Account:   account,
		Username:  username,
		Verified:  true,
		UpdatedAt: time.Now().UTC(),
	}

	// The unique index on username makes the check-then-insert atomic: a
	// concurrent registration of the same name surfaces here as 23505.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (account, username, verified, updated_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (account) DO UPDATE
		SET username = EXCLUDED.username, verified = TRUE, updated_at = EXCLUDED.updated_at
	`, account, username, id.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return identity.Identity{}, tipping.ErrUsernameTaken
		}
		return identity.Identity{}, err
	}
	return id, nil
}

// --- TipStore ---------------------------------------------------------------

func (s *Store) CreateReceipt(ctx context.Context, receipt tipping.Receipt) (tipping.Receipt, error) {
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tip_receipts (id, sender, recipient, asset, gross, fee, net, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, receipt.ID, receipt.Sender, receipt.Recipient, receipt.Asset,
		int64(receipt.Gross), int64(receipt.Fee), int64(receipt.Net), receipt.CreatedAt)
	if err != nil {
		return tipping.Receipt{}, err
	}
	return receipt, nil
}

func (s *Store) ListReceipts(ctx context.Context, account string, limit int) ([]tipping.Receipt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, recipient, asset, gross, fee, net, created_at
		FROM tip_receipts
		WHERE sender = $1 OR recipient = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tipping.Receipt
	for rows.Next() {
		var (
			r               tipping.Receipt
			gross, fee, net int64
		)
		if err := rows.Scan(&r.ID, &r.Sender, &r.Recipient, &r.Asset, &gross, &fee, &net, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Gross = uint64(gross)
		r.Fee = uint64(fee)
		r.Net = uint64(net)
		result = append(result, r)
	}
	return result, rows.Err()
}

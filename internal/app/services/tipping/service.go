// Package tipping implements the tip engine: validation, fee split,
// settlement, and the per-account statistics ledger built on top of it.
package tipping

import (
	"context"
	"fmt"
	"sync"

	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/auth"
	domain "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/ledger"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/metrics"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/pkg/logger"
)

// Service orchestrates tips and owns the statistics ledger.
type Service struct {
	// mu serialises mutating operations so the transfer legs and the stats
	// update of one tip never interleave with another.
	mu     sync.Mutex
	params domain.Params
	stats  storage.StatsStore
	tips   storage.TipStore
	ledger ledger.Ledger
	log    *logger.Logger
}

// New constructs the tip engine.
func New(params domain.Params, stats storage.StatsStore, tips storage.TipStore, lgr ledger.Ledger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tipping")
	}
	return &Service{params: params, stats: stats, tips: tips, ledger: lgr, log: log}
}

// Params exposes the platform constants for read-only consumers.
func (s *Service) Params() domain.Params { return s.params }

// Tip validates and settles a tip from sender. On success the gross amount
// has left the sender, the net amount reached the recipient, the fee reached
// the platform owner, and both parties' statistics are updated.
func (s *Service) Tip(ctx context.Context, sender string, req domain.TipRequest) (domain.Receipt, error) {
	if !s.params.SupportedAsset(req.Asset) {
		return domain.Receipt{}, domain.ErrInvalidTokenType
	}
	if !s.params.ValidAmount(req.Amount) {
		return domain.Receipt{}, domain.ErrInvalidAmount
	}
	if !s.params.ValidRecipient(sender, req.Recipient) {
		return domain.Receipt{}, domain.ErrInvalidRecipient
	}

	net, fee := s.params.Split(req.Amount)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Transfer(ctx, req.Asset, sender, req.Recipient, net); err != nil {
		metrics.RecordTip(req.Asset, "transfer_failed", 0, 0)
		return domain.Receipt{}, fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}
	if fee > 0 {
		if err := s.ledger.Transfer(ctx, req.Asset, sender, s.params.Owner, fee); err != nil {
			// Unwind the first leg so the tip fails as a unit.
			if refundErr := s.ledger.Transfer(ctx, req.Asset, req.Recipient, sender, net); refundErr != nil {
				s.log.WithError(refundErr).
					WithField("sender", sender).
					WithField("recipient", req.Recipient).
					Error("failed to unwind net transfer after fee failure")
			}
			metrics.RecordTip(req.Asset, "transfer_failed", 0, 0)
			return domain.Receipt{}, fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
		}
	}

	// Points accrue inside the same stats write so a failure leaves no
	// partial state: either all of sent/received/points land, or the
	// transfer legs are unwound and the tip fails as a unit.
	points := s.params.RewardFor(req.Amount)
	if err := s.stats.RecordTip(ctx, sender, req.Recipient, req.Amount, net, points); err != nil {
		s.unwind(ctx, sender, req, net, fee)
		return domain.Receipt{}, fmt.Errorf("record tip stats: %w", err)
	}
	if points > 0 {
		metrics.RecordRewardPoints(points)
	}

	receipt := domain.Receipt{
		Sender:    sender,
		Recipient: req.Recipient,
		Asset:     req.Asset,
		Gross:     req.Amount,
		Fee:       fee,
		Net:       net,
	}
	created, err := s.tips.CreateReceipt(ctx, receipt)
	if err != nil {
		// The journal is supplementary; the tip itself has settled.
		s.log.WithError(err).WithField("sender", sender).Warn("failed to journal tip receipt")
		created = receipt
	}

	metrics.RecordTip(req.Asset, "accepted", req.Amount, fee)
	s.log.WithField("sender", sender).
		WithField("recipient", req.Recipient).
		WithField("asset", req.Asset).
		WithField("gross", req.Amount).
		WithField("fee", fee).
		Info("tip settled")
	return created, nil
}

// unwind returns both transfer legs to the sender after a stats failure.
func (s *Service) unwind(ctx context.Context, sender string, req domain.TipRequest, net, fee uint64) {
	if err := s.ledger.Transfer(ctx, req.Asset, req.Recipient, sender, net); err != nil {
		s.log.WithError(err).WithField("sender", sender).Error("failed to unwind net transfer")
	}
	if fee > 0 {
		if err := s.ledger.Transfer(ctx, req.Asset, s.params.Owner, sender, fee); err != nil {
			s.log.WithError(err).WithField("sender", sender).Error("failed to unwind fee transfer")
		}
	}
}

// Stats returns the aggregate record for an account; absent accounts read
// as all-zero.
func (s *Service) Stats(ctx context.Context, account string) (domain.UserStats, error) {
	return s.stats.GetStats(ctx, account)
}

// TotalSent returns the account's lifetime gross tips sent.
func (s *Service) TotalSent(ctx context.Context, account string) (uint64, error) {
	rec, err := s.stats.GetStats(ctx, account)
	return rec.TotalSent, err
}

// TotalReceived returns the account's lifetime net tips received.
func (s *Service) TotalReceived(ctx context.Context, account string) (uint64, error) {
	rec, err := s.stats.GetStats(ctx, account)
	return rec.TotalReceived, err
}

// PreviewReceived projects the account's total received after a further tip
// of the given gross amount, using the same fee arithmetic as Tip.
func (s *Service) PreviewReceived(ctx context.Context, account string, amount uint64) (uint64, error) {
	rec, err := s.stats.GetStats(ctx, account)
	if err != nil {
		return 0, err
	}
	net, _ := s.params.Split(amount)
	return rec.TotalReceived + net, nil
}

// PreviewRewardPoints projects the account's reward points after sending a
// further tip of the given gross amount.
func (s *Service) PreviewRewardPoints(ctx context.Context, account string, amount uint64) (uint64, error) {
	rec, err := s.stats.GetStats(ctx, account)
	if err != nil {
		return 0, err
	}
	return rec.RewardPoints + s.params.RewardFor(amount), nil
}

// ValidTipAmount reports whether an amount would pass tip validation.
func (s *Service) ValidTipAmount(amount uint64) bool {
	return s.params.ValidAmount(amount)
}

// AddRewardPoints applies an owner-only administrative point adjustment.
// The adjustment is additive: points accumulate on top of whatever the
// account already earned.
func (s *Service) AddRewardPoints(ctx context.Context, caller, target string, points uint64) error {
	if err := auth.RequireOwner(caller, s.params.Owner); err != nil {
		return err
	}
	if points > s.params.MaxRewardRate {
		return domain.ErrInvalidRewardRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stats.AddRewardPoints(ctx, target, points); err != nil {
		return fmt.Errorf("adjust reward points: %w", err)
	}
	metrics.RecordRewardPoints(points)
	s.log.WithField("target", target).WithField("points", points).Info("reward points adjusted")
	return nil
}

// History lists recent receipts involving the account, newest first.
func (s *Service) History(ctx context.Context, account string, limit int) ([]domain.Receipt, error) {
	return s.tips.ListReceipts(ctx, account, limit)
}

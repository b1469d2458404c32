package tipping

import (
	"context"
	"errors"
	"testing"

	domain "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/ledger"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage/memory"
)

func testParams() domain.Params {
	p := domain.DefaultParams()
	p.Owner = "OWNER"
	return p
}

func newService(t *testing.T) (*Service, *ledger.MemoryLedger, *memory.Store) {
	t.Helper()
	store := memory.New()
	bank := ledger.NewMemoryLedger()
	svc := New(testParams(), store, store, bank, nil)
	return svc, bank, store
}

func TestTipSettlesAndSplitsFee(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	receipt, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: 1_000_000, Asset: domain.AssetSTX,
	})
	if err != nil {
		t.Fatalf("tip: %v", err)
	}
	if receipt.Gross != 1_000_000 || receipt.Fee != 50_000 || receipt.Net != 950_000 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if receipt.ID == "" {
		t.Fatal("receipt not journaled with an ID")
	}

	if got := bank.Balance(domain.AssetSTX, "alice"); got != 9_000_000 {
		t.Fatalf("sender balance = %d, want 9000000", got)
	}
	if got := bank.Balance(domain.AssetSTX, "bob"); got != 950_000 {
		t.Fatalf("recipient balance = %d, want 950000", got)
	}
	if got := bank.Balance(domain.AssetSTX, "OWNER"); got != 50_000 {
		t.Fatalf("owner fee balance = %d, want 50000", got)
	}

	sent, err := svc.TotalSent(context.Background(), "alice")
	if err != nil || sent != 1_000_000 {
		t.Fatalf("total sent = %d (%v), want 1000000", sent, err)
	}
	received, err := svc.TotalReceived(context.Background(), "bob")
	if err != nil || received != 950_000 {
		t.Fatalf("total received = %d (%v), want 950000", received, err)
	}
}

func TestTipRewardAccrual(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	// Below threshold: no points.
	if _, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: 999_999, Asset: domain.AssetSTX,
	}); err != nil {
		t.Fatalf("tip: %v", err)
	}
	stats, _ := svc.Stats(context.Background(), "alice")
	if stats.RewardPoints != 0 {
		t.Fatalf("sub-threshold tip earned %d points", stats.RewardPoints)
	}

	// At threshold and above: flat rate per tip, accumulating.
	for _, amount := range []uint64{1_000_000, 2_500_000} {
		if _, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
			Recipient: "bob", Amount: amount, Asset: domain.AssetSTX,
		}); err != nil {
			t.Fatalf("tip %d: %v", amount, err)
		}
	}
	stats, _ = svc.Stats(context.Background(), "alice")
	if stats.RewardPoints != 20 {
		t.Fatalf("points = %d, want 20", stats.RewardPoints)
	}
}

func TestTipTinyAmountSkipsFee(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 100)

	receipt, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: 19, Asset: domain.AssetSTX,
	})
	if err != nil {
		t.Fatalf("tip: %v", err)
	}
	if receipt.Fee != 0 || receipt.Net != 19 {
		t.Fatalf("unexpected split: %+v", receipt)
	}
	if got := bank.Balance(domain.AssetSTX, "OWNER"); got != 0 {
		t.Fatalf("owner received %d for a fee-free tip", got)
	}
}

func TestTipValidation(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	cases := []struct {
		name string
		req  domain.TipRequest
		want *domain.Error
	}{
		{"unsupported asset", domain.TipRequest{Recipient: "bob", Amount: 100, Asset: "ETH"}, domain.ErrInvalidTokenType},
		{"zero amount", domain.TipRequest{Recipient: "bob", Amount: 0, Asset: domain.AssetSTX}, domain.ErrInvalidAmount},
		{"over maximum", domain.TipRequest{Recipient: "bob", Amount: 1_001_000_000_000, Asset: domain.AssetSTX}, domain.ErrInvalidAmount},
		{"self tip", domain.TipRequest{Recipient: "alice", Amount: 100, Asset: domain.AssetSTX}, domain.ErrInvalidRecipient},
		{"tip to owner", domain.TipRequest{Recipient: "OWNER", Amount: 100, Asset: domain.AssetSTX}, domain.ErrInvalidRecipient},
	}
	for _, c := range cases {
		if _, err := svc.Tip(context.Background(), "alice", c.req); !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
	}

	// No failed attempt moved funds or touched stats.
	if got := bank.Balance(domain.AssetSTX, "alice"); got != 10_000_000 {
		t.Fatalf("sender balance changed: %d", got)
	}
	stats, _ := svc.Stats(context.Background(), "alice")
	if stats.TotalSent != 0 {
		t.Fatalf("stats changed by failed tips: %+v", stats)
	}
}

func TestTipInsufficientBalance(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 100)

	_, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: 1_000, Asset: domain.AssetSTX,
	})
	if !errors.Is(err, domain.ErrTransferFailed) {
		t.Fatalf("got %v, want %v", err, domain.ErrTransferFailed)
	}

	if got := bank.Balance(domain.AssetSTX, "alice"); got != 100 {
		t.Fatalf("failed tip changed balance: %d", got)
	}
	stats, _ := svc.Stats(context.Background(), "alice")
	if stats.TotalSent != 0 {
		t.Fatalf("failed tip recorded stats: %+v", stats)
	}
}

// failingStats rejects RecordTip so the settlement unwind path can be
// observed.
type failingStats struct {
	*memory.Store
}

func (f failingStats) RecordTip(context.Context, string, string, uint64, uint64, uint64) error {
	return errors.New("stats backend down")
}

func TestTipUnwindsTransfersOnStatsFailure(t *testing.T) {
	store := memory.New()
	bank := ledger.NewMemoryLedger()
	svc := New(testParams(), failingStats{store}, store, bank, nil)

	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	_, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: 1_000_000, Asset: domain.AssetSTX,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if got := bank.Balance(domain.AssetSTX, "alice"); got != 10_000_000 {
		t.Fatalf("sender balance not restored: %d", got)
	}
	if got := bank.Balance(domain.AssetSTX, "bob"); got != 0 {
		t.Fatalf("recipient kept funds: %d", got)
	}
	if got := bank.Balance(domain.AssetSTX, "OWNER"); got != 0 {
		t.Fatalf("owner kept fee: %d", got)
	}

	// Nothing of the failed tip is visible, points included.
	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.TotalSent != 0 || stats.RewardPoints != 0 {
		t.Fatalf("failed tip left partial stats: %+v", stats)
	}
	received, _ := store.GetStats(context.Background(), "bob")
	if received.TotalReceived != 0 {
		t.Fatalf("failed tip left partial stats: %+v", received)
	}
}

// brokenAdjustments fails the administrative adjustment path; tip
// settlement must not depend on it.
type brokenAdjustments struct {
	*memory.Store
}

func (b brokenAdjustments) AddRewardPoints(context.Context, string, uint64) error {
	return errors.New("adjustment backend down")
}

func TestTipAccruesPointsAtomicallyWithStats(t *testing.T) {
	store := memory.New()
	bank := ledger.NewMemoryLedger()
	svc := New(testParams(), brokenAdjustments{store}, store, bank, nil)

	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	if _, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: 1_000_000, Asset: domain.AssetSTX,
	}); err != nil {
		t.Fatalf("tip: %v", err)
	}

	// The tip settled as a unit: transfers, stats, and points together.
	if got := bank.Balance(domain.AssetSTX, "alice"); got != 9_000_000 {
		t.Fatalf("sender balance = %d, want 9000000", got)
	}
	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.TotalSent != 1_000_000 {
		t.Fatalf("total sent = %d, want 1000000", stats.TotalSent)
	}
	if stats.RewardPoints != 10 {
		t.Fatalf("points = %d, want 10 accrued with the stats write", stats.RewardPoints)
	}
}

func TestPreviewsMatchSettlement(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	const amount = 2_000_000

	previewReceived, err := svc.PreviewReceived(context.Background(), "bob", amount)
	if err != nil {
		t.Fatalf("preview received: %v", err)
	}
	previewPoints, err := svc.PreviewRewardPoints(context.Background(), "alice", amount)
	if err != nil {
		t.Fatalf("preview points: %v", err)
	}

	if _, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
		Recipient: "bob", Amount: amount, Asset: domain.AssetSTX,
	}); err != nil {
		t.Fatalf("tip: %v", err)
	}

	received, _ := svc.TotalReceived(context.Background(), "bob")
	if received != previewReceived {
		t.Fatalf("preview %d, settled %d", previewReceived, received)
	}
	stats, _ := svc.Stats(context.Background(), "alice")
	if stats.RewardPoints != previewPoints {
		t.Fatalf("preview %d points, settled %d", previewPoints, stats.RewardPoints)
	}
}

func TestValidTipAmount(t *testing.T) {
	svc, _, _ := newService(t)

	if svc.ValidTipAmount(0) {
		t.Fatal("zero accepted")
	}
	if !svc.ValidTipAmount(1_000_000_000_000) {
		t.Fatal("maximum rejected")
	}
	if svc.ValidTipAmount(1_000_000_000_001) {
		t.Fatal("above maximum accepted")
	}
}

func TestAddRewardPoints(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if err := svc.AddRewardPoints(ctx, "OWNER", "alice", 10); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := svc.AddRewardPoints(ctx, "OWNER", "alice", 50); err != nil {
		t.Fatalf("add points: %v", err)
	}
	stats, _ := svc.Stats(ctx, "alice")
	if stats.RewardPoints != 60 {
		t.Fatalf("points = %d, want 60 (adjustments accumulate)", stats.RewardPoints)
	}

	if err := svc.AddRewardPoints(ctx, "OWNER", "alice", 150); !errors.Is(err, domain.ErrInvalidRewardRate) {
		t.Fatalf("oversized adjustment: got %v, want %v", err, domain.ErrInvalidRewardRate)
	}
	if err := svc.AddRewardPoints(ctx, "mallory", "alice", 10); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-owner adjustment: got %v, want %v", err, domain.ErrUnauthorized)
	}

	stats, _ = svc.Stats(ctx, "alice")
	if stats.RewardPoints != 60 {
		t.Fatalf("rejected adjustments changed points: %d", stats.RewardPoints)
	}
}

func TestHistory(t *testing.T) {
	svc, bank, _ := newService(t)
	bank.Credit(domain.AssetSTX, "alice", 10_000_000)

	for _, amount := range []uint64{100_000, 200_000} {
		if _, err := svc.Tip(context.Background(), "alice", domain.TipRequest{
			Recipient: "bob", Amount: amount, Asset: domain.AssetSTX,
		}); err != nil {
			t.Fatalf("tip: %v", err)
		}
	}

	receipts, err := svc.History(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("listed %d receipts, want 2", len(receipts))
	}
	if receipts[0].Gross != 200_000 {
		t.Fatalf("receipts not newest first: %+v", receipts)
	}
}

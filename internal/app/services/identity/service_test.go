package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage/memory"
)

func newService() *Service {
	params := tipping.DefaultParams()
	params.Owner = "OWNER"
	return New(params, memory.New(), nil)
}

func TestSetAndGet(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	id, err := svc.Set(ctx, "alice", "alice", "alice123")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if id.Username != "alice123" || !id.Verified {
		t.Fatalf("unexpected identity: %+v", id)
	}

	got, ok, err := svc.Get(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Username != "alice123" {
		t.Fatalf("username = %q, want alice123", got.Username)
	}

	if _, ok, _ := svc.Get(ctx, "bob"); ok {
		t.Fatal("unregistered account has an identity")
	}
}

func TestSetRejectsCrossAccount(t *testing.T) {
	svc := newService()

	_, err := svc.Set(context.Background(), "mallory", "alice", "stolen")
	if !errors.Is(err, tipping.ErrUnauthorized) {
		t.Fatalf("got %v, want %v", err, tipping.ErrUnauthorized)
	}
}

func TestSetValidatesUsername(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Set(ctx, "alice", "alice", ""); !errors.Is(err, tipping.ErrEmptyUsername) {
		t.Fatalf("empty name: got %v, want %v", err, tipping.ErrEmptyUsername)
	}
	if _, err := svc.Set(ctx, "alice", "alice", "ab"); !errors.Is(err, tipping.ErrUsernameLength) {
		t.Fatalf("short name: got %v, want %v", err, tipping.ErrUsernameLength)
	}
	long := strings.Repeat("x", 21)
	if _, err := svc.Set(ctx, "alice", "alice", long); !errors.Is(err, tipping.ErrUsernameLength) {
		t.Fatalf("long name: got %v, want %v", err, tipping.ErrUsernameLength)
	}
}

func TestSetEnforcesUniqueness(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Set(ctx, "alice", "alice", "alice123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := svc.Set(ctx, "bob", "bob", "alice123"); !errors.Is(err, tipping.ErrUsernameTaken) {
		t.Fatalf("duplicate: got %v, want %v", err, tipping.ErrUsernameTaken)
	}

	// Changing your own name is allowed; the old name becomes available.
	if _, err := svc.Set(ctx, "alice", "alice", "alice_v2"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := svc.Set(ctx, "bob", "bob", "alice123"); err != nil {
		t.Fatalf("freed name rejected: %v", err)
	}
}

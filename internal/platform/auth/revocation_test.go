package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_RevokeAndIsRevoked(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	if err := store.Revoke(ctx, "token-abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "token-abc")
	if err != nil || !revoked {
		t.Errorf("expected token-abc to be revoked, got %v %v", revoked, err)
	}
	revoked, _ = store.IsRevoked(ctx, "token-xyz")
	if revoked {
		t.Error("expected unknown token to not be revoked")
	}
}

func TestMemoryStore_KeepsExpiredEntries(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	store.Revoke(ctx, "old", time.Now().Add(-time.Hour))
	revoked, _ := store.IsRevoked(ctx, "old")
	if !revoked {
		t.Error("expected entry to survive past its expiry")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Revoke(ctx, fmt.Sprintf("tok-%d", n%10), time.Now().Add(time.Hour))
		}(i)
		go func(n int) {
			defer wg.Done()
			store.IsRevoked(ctx, fmt.Sprintf("tok-%d", n%10))
		}(i)
	}
	wg.Wait()

	if store.Count() != 10 {
		t.Errorf("expected 10 entries, got %d", store.Count())
	}
}

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	keys   map[string]time.Duration
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	f.keys[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisStore_RevokeAndIsRevoked(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisRevocationStore(fake, "")
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Revoke(ctx, "raw-token", now.Add(90*time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "raw-token")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
	revoked, _ = store.IsRevoked(ctx, "other-token")
	if revoked {
		t.Error("expected other token to not be revoked")
	}

	for key, ttl := range fake.keys {
		if !strings.HasPrefix(key, DefaultRevocationPrefix) {
			t.Errorf("unexpected key %q", key)
		}
		if strings.Contains(key, "raw-token") {
			t.Error("raw token should not appear in the key")
		}
		if ttl != 90*time.Minute {
			t.Errorf("expected ttl 90m, got %v", ttl)
		}
	}
}

func TestRedisStore_MinimumTTL(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisRevocationStore(fake, "test:")
	store.Revoke(context.Background(), "tok", time.Now().Add(-time.Minute))

	for _, ttl := range fake.keys {
		if ttl != time.Second {
			t.Errorf("expected 1s ttl floor, got %v", ttl)
		}
	}
}

func TestRedisStore_SetError(t *testing.T) {
	fake := newFakeRedis()
	fake.setErr = errors.New("connection refused")
	store := NewRedisRevocationStore(fake, "")

	err := store.Revoke(context.Background(), "tok", time.Now().Add(time.Hour))
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}

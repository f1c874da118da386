package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSaveAndLookupSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "test-token-hash"
	userID := "user-123"
	expiresAt := time.Now().Add(24 * time.Hour)

	if err := store.SaveSession(ctx, tokenHash, userID, expiresAt); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, ok, err := store.LookupSession(ctx, tokenHash)
	if err != nil {
		t.Fatalf("LookupSession failed: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist")
	}
	if got != userID {
		t.Errorf("expected user ID %s, got %s", userID, got)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "expired-token"

	// Save with very short TTL
	expiresAt := time.Now().Add(1 * time.Millisecond)
	if err := store.SaveSession(ctx, tokenHash, "user-456", expiresAt); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Millisecond)

	_, ok, err := store.LookupSession(ctx, tokenHash)
	if err != nil {
		t.Fatalf("LookupSession failed: %v", err)
	}
	if ok {
		t.Error("expected expired session to be gone")
	}
}

func TestLookupNonExistentSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	_, ok, err := store.LookupSession(ctx, "non-existent-token")
	if err != nil {
		t.Fatalf("LookupSession failed: %v", err)
	}
	if ok {
		t.Error("expected non-existent session to report ok=false")
	}
}

func TestRevokeSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "token-to-revoke"
	expiresAt := time.Now().Add(24 * time.Hour)

	if err := store.SaveSession(ctx, tokenHash, "user-789", expiresAt); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	if _, ok, _ := store.LookupSession(ctx, tokenHash); !ok {
		t.Fatal("session missing before revoke")
	}

	if err := store.RevokeSession(ctx, tokenHash); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}

	if _, ok, _ := store.LookupSession(ctx, tokenHash); ok {
		t.Error("expected session to be gone after revoke")
	}
}

func TestRevokeNonExistentSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	// Revoking a non-existent token should not error
	if err := store.RevokeSession(ctx, "non-existent-token"); err != nil {
		t.Errorf("RevokeSession for non-existent token failed: %v", err)
	}
}

func TestSessionIsolation(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(24 * time.Hour)

	if err := store.SaveSession(ctx, "token-1", "user-1", expiresAt); err != nil {
		t.Fatalf("SaveSession 1 failed: %v", err)
	}
	if err := store.SaveSession(ctx, "token-2", "user-2", expiresAt); err != nil {
		t.Fatalf("SaveSession 2 failed: %v", err)
	}

	if got, ok, _ := store.LookupSession(ctx, "token-1"); !ok || got != "user-1" {
		t.Errorf("token-1 lookup = %q ok=%v", got, ok)
	}
	if got, ok, _ := store.LookupSession(ctx, "token-2"); !ok || got != "user-2" {
		t.Errorf("token-2 lookup = %q ok=%v", got, ok)
	}

	if err := store.RevokeSession(ctx, "token-1"); err != nil {
		t.Fatalf("Revoke token-1 failed: %v", err)
	}

	if _, ok, _ := store.LookupSession(ctx, "token-1"); ok {
		t.Error("expected token-1 to be revoked")
	}
	if got, ok, _ := store.LookupSession(ctx, "token-2"); !ok || got != "user-2" {
		t.Errorf("token-2 after revoke = %q ok=%v", got, ok)
	}
}

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *kvStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := NewKVStore(addr, os.Getenv("REDIS_PASSWORD"), "hatesaway-test:")
	if err != nil {
		t.Fatalf("NewKVStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	store.Remove(ctx, "k")

	if _, found, err := store.Get(ctx, "k"); err != nil || found {
		t.Fatalf("Get() before Set = found %v, err %v", found, err)
	}
	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	value, found, err := store.Get(ctx, "k")
	if err != nil || !found || value != "v" {
		t.Fatalf("Get() = %q, %v, %v", value, found, err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("key still present after Remove()")
	}
}

func TestNewKVStore_Unreachable(t *testing.T) {
	if _, err := NewKVStore("127.0.0.1:1", "", ""); err == nil {
		t.Error("NewKVStore() should fail when redis is unreachable")
	}
}

func TestNewKVStoreWithClient_BackendErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	store := NewKVStoreWithClient(client, "p:")
	defer store.Close()

	if store.prefix != "p:" {
		t.Errorf("prefix = %q, want p:", store.prefix)
	}
	if _, found, err := store.Get(context.Background(), "k"); err == nil || found {
		t.Errorf("Get() = found %v, err %v; want a backend error", found, err)
	}
	if err := store.Set(context.Background(), "k", "v"); err == nil {
		t.Error("Set() should report a backend error")
	}
}

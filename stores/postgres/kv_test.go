package postgres

import (
	"context"
	"os"
	"testing"
)

func TestKVStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	store, err := NewKVStore(dsn)
	if err != nil {
		t.Fatalf("NewKVStore() failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	store.Remove(ctx, "test-key")

	if _, found, err := store.Get(ctx, "test-key"); err != nil || found {
		t.Fatalf("Get() before Set = found %v, err %v", found, err)
	}
	if err := store.Set(ctx, "test-key", "v1"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set(ctx, "test-key", "v2"); err != nil {
		t.Fatalf("Set() upsert failed: %v", err)
	}
	value, found, err := store.Get(ctx, "test-key")
	if err != nil || !found || value != "v2" {
		t.Fatalf("Get() = %q, %v, %v", value, found, err)
	}
	if err := store.Remove(ctx, "test-key"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
}

func TestEntry_TableName(t *testing.T) {
	if got := (Entry{}).TableName(); got != "hatesaway_kv" {
		t.Errorf("TableName() = %q", got)
	}
}

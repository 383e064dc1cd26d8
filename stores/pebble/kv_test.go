package pebble

import (
	"context"
	"testing"
)

func TestKVStore_RoundTrip(t *testing.T) {
	store := NewKVStore(t.TempDir())
	defer store.Close()
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "k"); err != nil || found {
		t.Fatalf("Get() on empty store = found %v, err %v", found, err)
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
	if err := store.Remove(ctx, "k"); err != nil {
		t.Errorf("Remove() of missing key failed: %v", err)
	}
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewKVStore(dir)
	if err := first.Set(ctx, "hatesaway_likes", `["d1:u1"]`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second := NewKVStore(dir)
	defer second.Close()
	value, found, err := second.Get(ctx, "hatesaway_likes")
	if err != nil || !found || value != `["d1:u1"]` {
		t.Errorf("Get() after reopen = %q, %v, %v", value, found, err)
	}
}

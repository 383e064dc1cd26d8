package instrumented

import (
	"context"
	"errors"
	"testing"

	"hatesaway-server/core"
	"hatesaway-server/stores/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errors.New("boom") }
func (failingStore) Set(context.Context, string, string) error         { return errors.New("boom") }
func (failingStore) Remove(context.Context, string) error              { return errors.New("boom") }

func TestWrap_CountsOperations(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	store := Wrap(memory.NewKVStore(), m)
	ctx := context.Background()

	store.Get(ctx, "k")
	store.Set(ctx, "k", "v")
	store.Get(ctx, "k")
	store.Get(ctx, "k")
	store.Remove(ctx, "k")

	cases := map[string]float64{"get_miss": 1, "get_hit": 2, "set": 1, "remove": 1}
	for op, want := range cases {
		if got := testutil.ToFloat64(m.ops.WithLabelValues(op, "ok")); got != want {
			t.Errorf("ops{op=%s,result=ok} = %v, want %v", op, got, want)
		}
	}
}

func TestWrap_CountsErrors(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	store := Wrap(failingStore{}, m)

	if err := store.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("Set() should return the backend error")
	}
	if got := testutil.ToFloat64(m.ops.WithLabelValues("set", "error")); got != 1 {
		t.Errorf("ops{op=set,result=error} = %v, want 1", got)
	}
}

func TestNewMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first NewMetrics() failed: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("second NewMetrics() on the same registry should fail")
	}
}

func TestWrap_ForwardsAvailability(t *testing.T) {
	m, _ := NewMetrics(prometheus.NewRegistry())
	if !core.Available(Wrap(memory.NewKVStore(), m)) {
		t.Error("wrapped memory store should be available")
	}
}

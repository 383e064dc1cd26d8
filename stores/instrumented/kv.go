package instrumented

import (
	"context"
	"io"
	"time"

	"hatesaway-server/core"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by every instrumented store.
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hatesaway",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Storage port operations by op and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hatesaway",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Storage port operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{m.ops, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

type kvStore struct {
	next    core.KVStore
	metrics *Metrics
}

// Wrap records every call on next.
func Wrap(next core.KVStore, m *Metrics) core.KVStore {
	return &kvStore{next: next, metrics: m}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, found, err := s.next.Get(ctx, key)
	op := "get_hit"
	if !found {
		op = "get_miss"
	}
	s.metrics.observe(op, start, err)
	return value, found, err
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.metrics.observe("set", start, err)
	return err
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)
	s.metrics.observe("remove", start, err)
	return err
}

func (s *kvStore) Available() bool {
	return core.Available(s.next)
}

func (s *kvStore) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

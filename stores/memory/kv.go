package memory

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type kvStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewKVStore creates an empty in-memory store. Contents are lost on exit.
func NewKVStore() *kvStore {
	return &kvStore{values: make(map[string]string)}
}

// NewKVStoreWith creates an in-memory store seeded with values.
func NewKVStoreWith(values map[string]string) *kvStore {
	s := NewKVStore()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	value, ok := s.values[key]
	s.mu.RUnlock()

	logrus.WithFields(logrus.Fields{"key": key, "found": ok}).Debug("Value read")
	return value, ok, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"key":         key,
		"data_length": len(value),
	}).Debug("Value written")
	return nil
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()

	logrus.WithField("key", key).Debug("Value removed")
	return nil
}

// Keys returns the stored keys in no particular order.
func (s *kvStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

package notify

import (
	"context"
	"io"
	"sync"

	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

// Change describes one successful write to a key.
type Change struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

// Notifier receives changes after they are persisted. It is a hint to
// reload, not a lock: nothing orders writes against notifications.
type Notifier interface {
	Notify(change Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(change Change)

func (f NotifierFunc) Notify(change Change) { f(change) }

// Hub fans changes out to any number of subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Notifier
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]Notifier)}
}

// Subscribe registers n and returns a func that unregisters it.
func (h *Hub) Subscribe(n Notifier) (cancel func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = n
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Hub) Notify(change Change) {
	h.mu.RLock()
	subs := make([]Notifier, 0, len(h.subs))
	for _, n := range h.subs {
		subs = append(subs, n)
	}
	h.mu.RUnlock()

	for _, n := range subs {
		n.Notify(change)
	}
}

type kvStore struct {
	next     core.KVStore
	notifier Notifier
}

// Wrap emits a Change on notifier after every successful Set or Remove.
func Wrap(next core.KVStore, notifier Notifier) core.KVStore {
	return &kvStore{next: next, notifier: notifier}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.next.Get(ctx, key)
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		return err
	}
	s.emit(Change{Key: key})
	return nil
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	if err := s.next.Remove(ctx, key); err != nil {
		return err
	}
	s.emit(Change{Key: key, Removed: true})
	return nil
}

func (s *kvStore) emit(change Change) {
	logrus.WithFields(logrus.Fields{"key": change.Key, "removed": change.Removed}).Debug("Storage changed")
	s.notifier.Notify(change)
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

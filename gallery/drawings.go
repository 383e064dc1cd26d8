// Package gallery persists drawings, likes and comments as JSON collections
// in a core.KVStore.
//
// Every mutation reads the whole collection, changes it and writes it back.
// Service serializes that inside one process. Two processes sharing a
// backend can still lose each other's updates; the last write wins.
package gallery

import (
	"context"
	"sync"
	"time"

	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

type Service struct {
	mu  sync.RWMutex
	kv  core.KVStore
	now func() time.Time
}

// NewService returns a gallery over kv. A nil kv behaves as an environment
// without storage: reads are empty and writes do nothing.
func NewService(kv core.KVStore) *Service {
	return &Service{kv: kv, now: time.Now}
}

// SaveDrawing stores d at the front of the collection.
func (s *Service) SaveDrawing(ctx context.Context, d core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drawings []core.Drawing
	if err := load(ctx, s.kv, core.DrawingsKey, &drawings); err != nil {
		return err
	}
	drawings = append([]core.Drawing{d}, drawings...)
	if err := save(ctx, s.kv, core.DrawingsKey, drawings); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"drawing_id": d.ID,
		"user_id":    d.UserID,
		"data_size":  len(d.ImageURL),
	}).Info("Drawing saved successfully")
	return nil
}

// GetDrawings returns all drawings, newest first.
func (s *Service) GetDrawings(ctx context.Context) ([]core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawings(ctx)
}

func (s *Service) drawings(ctx context.Context) ([]core.Drawing, error) {
	var drawings []core.Drawing
	if err := load(ctx, s.kv, core.DrawingsKey, &drawings); err != nil {
		return nil, err
	}
	if drawings == nil {
		drawings = []core.Drawing{}
	}
	return drawings, nil
}

// GetDrawing looks a drawing up by id.
func (s *Service) GetDrawing(ctx context.Context, id string) (core.Drawing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drawings, err := s.drawings(ctx)
	if err != nil {
		return core.Drawing{}, false, err
	}
	for _, d := range drawings {
		if d.ID == id {
			return d, true, nil
		}
	}
	return core.Drawing{}, false, nil
}

// DeleteDrawing removes the drawing with id. Likes and comments that refer to
// it are left in place; see SweepOrphans.
func (s *Service) DeleteDrawing(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drawings, err := s.drawings(ctx)
	if err != nil {
		return err
	}
	kept := drawings[:0]
	for _, d := range drawings {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(drawings) {
		logrus.WithField("drawing_id", id).Debug("Drawing not found, nothing to delete")
		return nil
	}
	if err := save(ctx, s.kv, core.DrawingsKey, kept); err != nil {
		return err
	}

	logrus.WithField("drawing_id", id).Info("Drawing deleted")
	return nil
}

// ClearAll removes every gallery collection. The user id is kept.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !core.Available(s.kv) {
		return nil
	}
	for _, key := range []string{core.DrawingsKey, core.CommentsKey, core.LikesKey} {
		if err := s.kv.Remove(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to clear collection")
			return err
		}
	}
	logrus.Info("Gallery cleared")
	return nil
}

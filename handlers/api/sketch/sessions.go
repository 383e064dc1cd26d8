package sketch

import (
	"context"
	"sync"
	"time"

	"hatesaway-server/canvas"

	"github.com/sirupsen/logrus"
)

const DefaultIdleTimeout = 30 * time.Minute

type session struct {
	sketch   *canvas.Sketch
	lastSeen time.Time
}

// Sessions keeps one sketch per user. Only Start adds a session, and
// sessions left idle are dropped by Evict.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*session), now: time.Now}
}

// Get returns the user's sketch. A user who never started one gets an
// uninitialized sketch that is not kept.
func (s *Sessions) Get(userID string) *canvas.Sketch {
	sk, _ := s.Lookup(userID)
	return sk
}

// Lookup is Get that also reports whether the user has a session.
func (s *Sessions) Lookup(userID string) (*canvas.Sketch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &canvas.Sketch{}, false
	}
	sess.lastSeen = s.now()
	return sess.sketch, true
}

func (s *Sessions) Start(userID string, width, height int, background string) *canvas.Sketch {
	sk := canvas.NewSketch(width, height, background)
	s.mu.Lock()
	s.sessions[userID] = &session{sketch: sk, lastSeen: s.now()}
	s.mu.Unlock()
	return sk
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions not used for longer than idle and returns how many
// were dropped.
func (s *Sessions) Evict(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// StartJanitor evicts idle sessions every interval until ctx is done.
func (s *Sessions) StartJanitor(ctx context.Context, interval, idle time.Duration) {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Evict(idle); n > 0 {
					logrus.WithField("evicted", n).Debug("Dropped idle canvas sessions")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

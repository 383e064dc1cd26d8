package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const DefaultLimiterIdle = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per key.
type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*limiterEntry
	rps   float64
	burst int
	now   func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &limiterPool{m: make(map[string]*limiterEntry), rps: rps, burst: burst, now: time.Now}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.m[key]; ok {
		e.lastSeen = p.now()
		return e.lim
	}
	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.m[key] = &limiterEntry{lim: l, lastSeen: p.now()}
	return l
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}

func (p *limiterPool) evict(idle time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := p.now().Add(-idle)
	n := 0
	for k, e := range p.m {
		if e.lastSeen.Before(cutoff) {
			delete(p.m, k)
			n++
		}
	}
	return n
}

func (p *limiterPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// Limiter rate limits by client address and by user id. The address bucket
// is checked first so rotating the user id does not reset the budget.
type Limiter struct {
	byIP   *limiterPool
	byUser *limiterPool
}

type LimiterConfig struct {
	RPS     float64
	Burst   int
	IPRPS   float64
	IPBurst int
}

func NewLimiter(cfg LimiterConfig) *Limiter {
	return &Limiter{
		byIP:   newLimiterPool(cfg.IPRPS, cfg.IPBurst),
		byUser: newLimiterPool(cfg.RPS, cfg.Burst),
	}
}

// Handler rejects callers over either budget with 429.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		userID := UserID(r.Context())

		allowed := l.byIP.Allow(ip)
		if allowed && userID != "" {
			allowed = l.byUser.Allow(userID)
		}
		if !allowed {
			logrus.WithFields(logrus.Fields{
				"ip":      ip,
				"user_id": userID,
			}).Warn("Rate limit exceeded")
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, map[string]string{"error": "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Evict drops buckets unused for longer than idle. A bucket idle that long
// has refilled, so dropping it changes no caller's budget.
func (l *Limiter) Evict(idle time.Duration) int {
	return l.byIP.evict(idle) + l.byUser.evict(idle)
}

// StartJanitor evicts idle buckets every interval until ctx is done.
func (l *Limiter) StartJanitor(ctx context.Context, interval, idle time.Duration) {
	if idle <= 0 {
		idle = DefaultLimiterIdle
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
				if n := l.Evict(idle); n > 0 {
					logrus.WithField("evicted", n).Debug("Dropped idle rate limiters")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package ratelimit

import (
	"math"
	"sync"
	"time"

	"deployverify/internal/models"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key in memory. Buckets idle for
// twice the cleanup interval are evicted by a background goroutine.
type MemoryLimiter struct {
	rate            rate.Limit
	burst           int
	perMinute       int
	cleanupInterval time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
	closed  bool
}

// NewMemoryLimiter creates a limiter from cfg and starts its eviction loop.
// A burst below one is raised to one so the limiter can admit anything.
func NewMemoryLimiter(cfg models.RateLimitConfig) *MemoryLimiter {
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}

	m := &MemoryLimiter{
		rate:            rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst:           burst,
		perMinute:       cfg.RequestsPerMinute,
		cleanupInterval: cleanup,
		buckets:         make(map[string]*bucket),
		done:            make(chan struct{}),
	}
	go m.cleanup()
	return m
}

func (m *MemoryLimiter) Allow(key string) (bool, Info) {
	now := time.Now()

	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	m.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	info := Info{
		Limit:     m.perMinute,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   now,
	}
	if missing := float64(m.burst) - tokens; missing > 0 && m.rate > 0 {
		info.ResetAt = now.Add(time.Duration(missing / float64(m.rate) * float64(time.Second)))
	}

	if !allowed {
		r := b.limiter.ReserveN(now, 1)
		info.RetryAfter = r.DelayFrom(now)
		r.CancelAt(now)
	}

	return allowed, info
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

func (m *MemoryLimiter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
}

func (m *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *MemoryLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-2 * m.cleanupInterval)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"deployverify/internal/models"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, perMinute, burst int) *MemoryLimiter {
	t.Helper()
	l := NewMemoryLimiter(models.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: perMinute,
		BurstSize:         burst,
		CleanupInterval:   5 * time.Minute,
	})
	t.Cleanup(l.Close)
	return l
}

func TestMemoryLimiter_Allow_UnderLimit(t *testing.T) {
	limiter := newTestLimiter(t, 60, 10)

	allowed, info := limiter.Allow("192.168.1.1")
	assert.True(t, allowed)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, 9, info.Remaining)
	assert.True(t, info.ResetAt.After(time.Now().Add(-time.Second)))
	assert.Zero(t, info.RetryAfter)
}

func TestMemoryLimiter_Allow_ExceedsBurst(t *testing.T) {
	limiter := newTestLimiter(t, 60, 3)

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("10.0.0.1")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, info := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, time.Second)
}

func TestMemoryLimiter_Allow_DifferentKeys(t *testing.T) {
	limiter := newTestLimiter(t, 60, 1)

	allowed, _ := limiter.Allow("key1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("key1")
	assert.False(t, allowed, "key1 should be denied")

	allowed, _ = limiter.Allow("key2")
	assert.True(t, allowed, "key2 has its own bucket")
	assert.Equal(t, 2, limiter.Len())
}

func TestMemoryLimiter_ZeroBurstAdmitsOne(t *testing.T) {
	limiter := newTestLimiter(t, 60, 0)

	allowed, _ := limiter.Allow("key")
	assert.True(t, allowed)
}

func TestMemoryLimiter_ConcurrentAccess(t *testing.T) {
	limiter := newTestLimiter(t, 6000, 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			limiter.Allow(fmt.Sprintf("key-%d", i%5))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, limiter.Len())
}

func TestMemoryLimiter_EvictIdle(t *testing.T) {
	limiter := newTestLimiter(t, 60, 5)

	limiter.Allow("stale")
	limiter.Allow("fresh")

	limiter.mu.Lock()
	limiter.buckets["stale"].lastSeen = time.Now().Add(-time.Hour)
	limiter.mu.Unlock()

	limiter.evictIdle(time.Now())

	assert.Equal(t, 1, limiter.Len())
	limiter.mu.Lock()
	_, ok := limiter.buckets["fresh"]
	limiter.mu.Unlock()
	assert.True(t, ok)
}

func TestMemoryLimiter_CloseIsIdempotent(t *testing.T) {
	limiter := NewMemoryLimiter(models.RateLimitConfig{RequestsPerMinute: 60, BurstSize: 1})
	limiter.Close()
	assert.NotPanics(t, limiter.Close)
}

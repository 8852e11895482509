// Package ratelimit throttles callers of the HTTP trigger with per-key token
// buckets and sets the X-RateLimit-* response headers.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Limiter is safe for concurrent use.
type Limiter interface {
	// Allow reports whether a request identified by key may proceed.
	Allow(key string) (allowed bool, info Info)

	// Close stops background goroutines.
	Close()
}

// Info contains rate limit state for populating response headers.
type Info struct {
	Limit      int           // requests per minute
	Remaining  int           // whole tokens left in the bucket
	ResetAt    time.Time     // when the bucket is full again
	RetryAfter time.Duration // only set when denied
}

// KeyFunc derives the bucket key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by caller address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

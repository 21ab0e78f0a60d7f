package httpserver

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/server/httpserver/handler"
)

// idleBucketTTL is how long a client's bucket survives without requests.
const idleBucketTTL = 3 * time.Minute

// RateLimiter holds a token bucket per client IP. Idle buckets are swept
// lazily from Allow, so no goroutine is needed.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

// NewRateLimiter allows rps requests per second per IP, bursting to burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		buckets: make(map[string]*bucket),
		swept:   time.Now(),
	}
}

// Allow spends one token from ip's bucket if one is available.
func (l *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.swept) > idleBucketTTL {
		l.sweep(now.Add(-idleBucketTTL))
		l.swept = now
	}
	b := l.buckets[ip]
	if b == nil {
		b = &bucket{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	l.mu.Unlock()

	return b.AllowN(now, 1)
}

// Prune drops buckets idle since before and returns how many it dropped.
func (l *RateLimiter) Prune(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweep(before)
}

func (l *RateLimiter) sweep(before time.Time) int {
	n := len(l.buckets)
	for ip, b := range l.buckets {
		if b.seen.Before(before) {
			delete(l.buckets, ip)
		}
	}
	return n - len(l.buckets)
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit answers 429 once a client exhausts its bucket.
func RateLimit(l *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				handler.WriteError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

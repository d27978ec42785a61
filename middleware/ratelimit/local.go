package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused client bucket is kept.
const idleTTL = 3 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key. It serves a single
// instance when no Redis is configured; counters are not shared.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

var _ Allower = (*LocalLimiter)(nil)

// NewLocalLimiter creates an empty LocalLimiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow takes one token from the bucket for key. A bucket holds limit tokens
// and refills at limit per window.
func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(window / time.Duration(max(limit, 1)))
		b = &bucket{limiter: rate.NewLimiter(every, limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	resetAt := now
	if tokens < 1 {
		wait := (1 - tokens) / float64(b.limiter.Limit())
		resetAt = now.Add(time.Duration(wait * float64(time.Second)))
	}

	return &Result{
		Allowed:   allowed,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetAt:   resetAt,
		Limit:     limit,
	}, nil
}

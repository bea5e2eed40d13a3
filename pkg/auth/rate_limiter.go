package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is the shared contract for the in-process and the
// DynamoDB-backed limiters.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter counts requests per key over a rolling window.
// State lives in process memory, so it only guards a long-running
// server; the distributed limiter covers the Lambda path where this
// state would reset on every cold start.
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests
// per key within each rolling window
func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go l.sweep()
	return l
}

// Allow records a request against the key's window and reports whether
// it fits the budget
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	// Hits are appended in time order, so the expired ones form a prefix
	hits := l.hits[key]
	drop := 0
	for drop < len(hits) && !hits[drop].After(cutoff) {
		drop++
	}
	hits = hits[drop:]

	if len(hits) >= l.limit {
		l.hits[key] = hits
		return false, nil
	}

	l.hits[key] = append(hits, now)
	return true, nil
}

// Reset clears the window for a key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
	return nil
}

// sweep drops keys whose whole window has expired so idle clients do
// not accumulate
func (l *SlidingWindowLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for key, hits := range l.hits {
			if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
				delete(l.hits, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientQuota pairs a wide read budget with a narrow build budget for
// one keying scheme. Network builds run the differential-expression
// and correlation pipeline over every cluster, so build submissions
// carry their own, much smaller per-minute allowance.
type ClientQuota struct {
	prefix string
	reads  RateLimiter
	builds RateLimiter
}

// NewIPQuota creates per-IP read and build budgets
func NewIPQuota(readsPerMinute, buildsPerMinute int) *ClientQuota {
	return newClientQuota("ip", readsPerMinute, buildsPerMinute)
}

// NewUserQuota creates per-user read and build budgets
func NewUserQuota(readsPerMinute, buildsPerMinute int) *ClientQuota {
	return newClientQuota("user", readsPerMinute, buildsPerMinute)
}

func newClientQuota(prefix string, readsPerMinute, buildsPerMinute int) *ClientQuota {
	return &ClientQuota{
		prefix: prefix,
		reads:  NewSlidingWindowLimiter(readsPerMinute, time.Minute),
		builds: NewSlidingWindowLimiter(buildsPerMinute, time.Minute),
	}
}

// AllowRead draws from the read budget
func (q *ClientQuota) AllowRead(ctx context.Context, id string) (bool, error) {
	return q.reads.Allow(ctx, q.prefix+":"+id)
}

// AllowBuild draws from the build budget
func (q *ClientQuota) AllowBuild(ctx context.Context, id string) (bool, error) {
	return q.builds.Allow(ctx, q.prefix+":"+id)
}

// Reset clears both budgets for a client
func (q *ClientQuota) Reset(ctx context.Context, id string) error {
	key := q.prefix + ":" + id
	if err := q.reads.Reset(ctx, key); err != nil {
		return err
	}
	return q.builds.Reset(ctx, key)
}

package rate

import (
	"math"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds the number of per-key buckets a local limiter tracks
const DefaultMaxKeys = 10_000

// Limiter limits operations based on a provided key.
type Limiter interface {
	Allow(key string) (bool, error)
}

// localRateLimiter keeps one token bucket per key. Buckets are kept in
// least recently used order, and the oldest is dropped once maxKeys is
// exceeded. A dropped key starts over with a full bucket.
type localRateLimiter struct {
	limit   rate.Limit
	burst   int
	maxKeys int

	mu       sync.Mutex
	limiters *linkedhashmap.Map
}

// NewLocalRateLimiter returns an in memory limiter allowing limit operations
// per second per key, with a burst of the same size rounded up.
func NewLocalRateLimiter(limit rate.Limit) Limiter {
	return NewLocalRateLimiterWithBurst(limit, int(math.Ceil(float64(limit))), DefaultMaxKeys)
}

// NewLocalRateLimiterWithBurst is NewLocalRateLimiter with an explicit burst
// size and key bound.
func NewLocalRateLimiterWithBurst(limit rate.Limit, burst, maxKeys int) Limiter {
	if limit <= 0 {
		return &NoLimiter{}
	}
	if burst < 1 {
		burst = 1
	}
	if maxKeys < 1 {
		maxKeys = DefaultMaxKeys
	}

	return &localRateLimiter{
		limit:    limit,
		burst:    burst,
		maxKeys:  maxKeys,
		limiters: linkedhashmap.New(),
	}
}

// Allow implements limiter.Allow.
func (l *localRateLimiter) Allow(key string) (bool, error) {
	l.mu.Lock()
	var limiter *rate.Limiter
	if existing, ok := l.limiters.Get(key); ok {
		limiter = existing.(*rate.Limiter)
		l.limiters.Remove(key)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	l.limiters.Put(key, limiter)

	for l.limiters.Size() > l.maxKeys {
		it := l.limiters.Iterator()
		it.First()
		l.limiters.Remove(it.Key())
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}

// NoLimiter never limits operations
type NoLimiter struct {
}

// Allow implements limiter.Allow.
func (n *NoLimiter) Allow(key string) (bool, error) {
	return true, nil
}

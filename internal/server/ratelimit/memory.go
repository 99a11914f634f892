package ratelimit

import (
	"context"
	"sync"
	"time"
)

// tokenBucket allows a certain number of requests per window, with tokens
// refilling at a steady rate.
type tokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// take consumes a token when one is available and reports the bucket state.
func (tb *tokenBucket) take() (allowed bool, remaining int, reset time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		allowed = true
	}

	remaining = int(tb.tokens)
	reset = now
	if !allowed {
		// Time until the next whole token.
		reset = now.Add(time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second)))
	} else if tb.tokens < float64(tb.capacity) {
		reset = now.Add(time.Duration((float64(tb.capacity) - tb.tokens) / tb.refillRate * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// MemoryStore keeps one token bucket per key in process memory.
type MemoryStore struct {
	buckets    map[string]*tokenBucket
	lastAccess map[string]time.Time
	mu         sync.Mutex
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryStore creates a store. A positive cleanupInterval starts a
// goroutine that evicts buckets idle for over an hour.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets:    make(map[string]*tokenBucket),
		lastAccess: make(map[string]time.Time),
		stop:       make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanup(cleanupInterval)
	}
	return s
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, key string, rule Rule) (bool, int, time.Time, error) {
	s.mu.Lock()
	bucket, ok := s.buckets[key]
	if !ok {
		capacity := rule.Burst
		if capacity <= 0 {
			capacity = rule.Limit
		}
		bucket = newTokenBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())
		s.buckets[key] = bucket
	}
	s.lastAccess[key] = time.Now()
	s.mu.Unlock()

	allowed, remaining, reset := bucket.take()
	return allowed, remaining, reset, nil
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-1 * time.Hour))
		case <-s.stop:
			return
		}
	}
}

// evictIdle removes buckets not accessed since cutoff.
func (s *MemoryStore) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, last := range s.lastAccess {
		if last.Before(cutoff) {
			delete(s.buckets, key)
			delete(s.lastAccess, key)
		}
	}
}

// Len returns the number of live buckets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

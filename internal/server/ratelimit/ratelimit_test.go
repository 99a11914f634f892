package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *Config, opts ...Option) *Limiter {
	t.Helper()
	limiter, err := NewLimiter(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(limiter.Stop)
	return limiter
}

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	for i := 0; i < 10; i++ {
		allowed, _, _ := bucket.take()
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, remaining, reset := bucket.take()
	assert.False(t, allowed, "11th request should be denied")
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()), "reset should be in the future")
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(2, 10.0) // refills a token every 100ms

	bucket.take()
	bucket.take()
	allowed, _, _ := bucket.take()
	require.False(t, allowed)

	time.Sleep(150 * time.Millisecond)

	allowed, _, _ = bucket.take()
	assert.True(t, allowed, "request should be allowed after refill")
}

func TestTokenBucket_Remaining(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	var remaining int
	for i := 0; i < 5; i++ {
		_, remaining, _ = bucket.take()
	}
	assert.Equal(t, 5, remaining)
}

func TestLimiter_Allow(t *testing.T) {
	limiter := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow(ctx, "127.0.0.1", "/api/tags/", "GET")
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
	}

	allowed, info := limiter.Allow(ctx, "127.0.0.1", "/api/tags/", "GET")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))

	// A different client has its own budget.
	allowed, _ = limiter.Allow(ctx, "10.0.0.2", "/api/tags/", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.9": true},
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(ctx, "10.0.0.1", "/api/tags/", "GET")
		assert.True(t, allowed, "whitelisted client is never limited")
	}

	allowed, _ := limiter.Allow(ctx, "10.0.0.9", "/health", "GET")
	assert.False(t, allowed, "blacklisted client is always denied")
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1})

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow(context.Background(), "127.0.0.1", "/api/tags/", "GET")
		assert.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Rules: []Rule{
			{Pattern: "GET /health"},
			{Pattern: "GET /api/jobfairs/{id}/recommend_jobs/", Limit: 2, Window: time.Minute, Burst: 2},
		},
	})
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "127.0.0.1", "/api/jobfairs/4/recommend_jobs/", "GET")
	require.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "127.0.0.1", "/api/jobfairs/5/recommend_jobs/", "GET")
	require.True(t, allowed)

	allowed, info := limiter.Allow(ctx, "127.0.0.1", "/api/jobfairs/6/recommend_jobs/", "GET")
	assert.False(t, allowed, "every job fair shares the rule's budget")
	assert.Equal(t, 2, info.Limit)

	allowed, info = limiter.Allow(ctx, "127.0.0.1", "/api/jobfairs/6/", "GET")
	assert.True(t, allowed, "the fair itself is not covered by the rule")
	assert.Equal(t, 100, info.Limit)

	allowed, info = limiter.Allow(ctx, "127.0.0.1", "/api/tags/", "GET")
	assert.True(t, allowed, "other endpoints use the default limit")
	assert.Equal(t, 100, info.Limit)

	allowed, _ = limiter.Allow(ctx, "127.0.0.1", "/health", "GET")
	assert.True(t, allowed, "health is unlimited")
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := limiter.Allow(context.Background(), "127.0.0.1", "/api/tags/", "GET")
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestMemoryStore_EvictIdle(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	rule := Rule{Limit: 5, Window: time.Minute}

	for i := 0; i < 3; i++ {
		_, _, _, err := store.Take(context.Background(), fmt.Sprintf("client-%d", i), rule)
		require.NoError(t, err)
	}
	require.Equal(t, 3, store.Len())

	store.evictIdle(time.Now().Add(-time.Hour))
	assert.Equal(t, 3, store.Len(), "recently used buckets are kept")

	store.evictIdle(time.Now().Add(time.Second))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, Rule) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, errors.New("connection refused")
}

func (failingStore) Close() error { return nil }

func TestLimiter_StoreFailureAllows(t *testing.T) {
	var seen error
	limiter := newTestLimiter(t,
		&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute},
		WithStore(failingStore{}),
		WithErrorHandler(func(err error) { seen = err }),
	)

	allowed, info := limiter.Allow(context.Background(), "127.0.0.1", "/api/tags/", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1, info.Limit)
	assert.EqualError(t, seen, "connection refused")
}

func TestRedisStore_WindowKey(t *testing.T) {
	store := &RedisStore{prefix: "p:"}
	now := time.Unix(1_700_000_042, 0)

	key, reset := store.windowKey("127.0.0.1:GET /api/tags/", time.Minute, now)
	assert.Equal(t, "p:127.0.0.1:GET /api/tags/:1700000040", key)
	assert.Equal(t, time.Unix(1_700_000_100, 0), reset)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := newTestLimiter(t, nil)

	allowed, info := limiter.Allow(context.Background(), "127.0.0.1", "/api/tags/", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	_, info = limiter.Allow(context.Background(), "127.0.0.1", "/api/recommend_jobs/", "GET")
	assert.Equal(t, 60, info.Limit)
}

func TestNewLimiter_InvalidRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{name: "relative path", rule: Rule{Pattern: "GET api/tags/"}, wantErr: "must start with /"},
		{name: "negative limit", rule: Rule{Pattern: "/api/tags/", Limit: -1}, wantErr: "negative limit"},
		{name: "missing window", rule: Rule{Pattern: "/api/tags/", Limit: 5}, wantErr: "window must be positive"},
		{name: "unclosed wildcard", rule: Rule{Pattern: "/api/job/{post_id/"}, wantErr: "malformed wildcard"},
		{name: "rest wildcard not last", rule: Rule{Pattern: "/api/{rest...}/x"}, wantErr: "must be the last segment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLimiter(&Config{Enabled: true, Rules: []Rule{tt.rule}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatcher(t *testing.T) {
	m, err := newMatcher(append(DefaultRules(),
		Rule{Pattern: "/api/job/{post_id}/", Limit: 7, Window: time.Minute},
		Rule{Pattern: "GET /static/{path...}", Limit: 9, Window: time.Minute},
	))
	require.NoError(t, err)

	tests := []struct {
		name        string
		method      string
		path        string
		wantPattern string
	}{
		{name: "health", method: "GET", path: "/health", wantPattern: "GET /health"},
		{name: "recommend", method: "GET", path: "/api/recommend_jobs/", wantPattern: "GET /api/recommend_jobs/"},
		{name: "head uses get rule", method: "HEAD", path: "/api/recommend_jobs/", wantPattern: "GET /api/recommend_jobs/"},
		{name: "job fair id", method: "GET", path: "/api/jobfairs/3/recommend_jobs/", wantPattern: "GET /api/jobfairs/{id}/recommend_jobs/"},
		{name: "employer id", method: "GET", path: "/api/employers/10/recommend_jobs/", wantPattern: "GET /api/employers/{id}/recommend_jobs/"},
		{name: "any method", method: "DELETE", path: "/api/job/1/", wantPattern: "/api/job/{post_id}/"},
		{name: "rest wildcard", method: "GET", path: "/static/css/app.css", wantPattern: "GET /static/{path...}"},
		{name: "empty wildcard segment", method: "GET", path: "/api/jobfairs//recommend_jobs/"},
		{name: "extra segment", method: "GET", path: "/api/jobfairs/3/recommend_jobs/x"},
		{name: "missing trailing slash", method: "GET", path: "/api/recommend_jobs"},
		{name: "catalogue falls through", method: "GET", path: "/api/tags/"},
		{name: "method must match", method: "POST", path: "/api/recommend_jobs/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.match(tt.method, tt.path)
			if tt.wantPattern == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPattern, got.Pattern)
		})
	}
}

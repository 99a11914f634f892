// Package ratelimit throttles API clients per endpoint, in process with token
// buckets or across replicas with Redis fixed windows.
package ratelimit

import (
	"context"
	"time"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Store consumes one request from the budget identified by key.
type Store interface {
	Take(ctx context.Context, key string, rule Rule) (allowed bool, remaining int, reset time.Time, err error)
	Close() error
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	// Rules are tried in order. Nil means DefaultRules.
	Rules []Rule
}

// DefaultConfig returns an enabled limiter allowing 1000 requests a minute
// per client and route, with the default rules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		Rules:           DefaultRules(),
	}
}

// Limiter applies the configured policy and delegates counting to a Store.
type Limiter struct {
	config  *Config
	matcher *matcher
	store   Store
	onError func(error)
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(l *Limiter) { l.store = s }
}

// WithErrorHandler is called when the store fails. The request is allowed.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Limiter) { l.onError = fn }
}

// NewLimiter creates a rate limiter. A nil config means DefaultConfig.
func NewLimiter(config *Config, opts ...Option) (*Limiter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	rules := config.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	m, err := newMatcher(rules)
	if err != nil {
		return nil, err
	}

	l := &Limiter{config: config, matcher: m, onError: func(error) {}}
	for _, o := range opts {
		o(l)
	}
	if l.store == nil {
		cleanup := time.Duration(0)
		if config.Enabled {
			cleanup = config.CleanupInterval
		}
		l.store = NewMemoryStore(cleanup)
	}
	return l, nil
}

// Allow checks if a request from the given client is allowed. Requests
// matching a rule share that rule's budget; others are counted per path
// against the default limit.
func (l *Limiter) Allow(ctx context.Context, clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	rule := l.matcher.match(method, path)
	key := clientID + ":"
	if rule != nil {
		key += rule.Pattern
	} else {
		rule = &Rule{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
		key += method + " " + path
	}

	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	allowed, remaining, reset, err := l.store.Take(ctx, key, *rule)
	if err != nil {
		l.onError(err)
		return true, Info{Allowed: true, Limit: rule.Limit}
	}

	var retryAfter time.Duration
	if !allowed {
		retryAfter = max(time.Until(reset), 0)
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      rule.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retryAfter,
	}
}

// Stop releases the store.
func (l *Limiter) Stop() {
	_ = l.store.Close()
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hanapwede/job-recommender/internal/server/ratelimit"
)

// RateLimitConfig is the rate_limit section. Rules replace the built-in
// per-route rules when set.
type RateLimitConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	DefaultLimit    int              `mapstructure:"default_limit"`
	DefaultWindow   time.Duration    `mapstructure:"default_window"`
	CleanupInterval time.Duration    `mapstructure:"cleanup_interval"`
	Whitelist       []string         `mapstructure:"whitelist"`
	Blacklist       []string         `mapstructure:"blacklist"`
	Rules           []ratelimit.Rule `mapstructure:"rules"`
	// RedisURL shares counters across replicas when set.
	RedisURL string `mapstructure:"redis_url"`
}

// Limiter converts the section into the limiter's configuration.
func (r RateLimitConfig) Limiter() *ratelimit.Config {
	return &ratelimit.Config{
		Enabled:         r.Enabled,
		DefaultLimit:    r.DefaultLimit,
		DefaultWindow:   r.DefaultWindow,
		CleanupInterval: r.CleanupInterval,
		Whitelist:       ipSet(r.Whitelist),
		Blacklist:       ipSet(r.Blacklist),
		Rules:           r.Rules,
	}
}

// Validate checks limits only when rate limiting is enabled.
func (r RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.DefaultLimit <= 0 {
		return fmt.Errorf("config error: 'rate_limit.default_limit' must be positive, got %d", r.DefaultLimit)
	}
	if r.DefaultWindow <= 0 {
		return fmt.Errorf("config error: 'rate_limit.default_window' must be positive")
	}
	return nil
}

// ipSet accepts list entries that are themselves comma-separated, as they
// arrive from a single environment variable.
func ipSet(list []string) map[string]bool {
	set := make(map[string]bool)
	for _, entry := range list {
		for _, ip := range strings.Split(entry, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				set[ip] = true
			}
		}
	}
	return set
}

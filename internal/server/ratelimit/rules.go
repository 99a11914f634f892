package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Rule limits the requests matching Pattern. Patterns use the ServeMux
// syntax the API routes are registered with, e.g.
// "GET /api/jobfairs/{id}/recommend_jobs/". A pattern without a method
// matches every method, and a final "{name...}" segment matches any suffix.
// Limit 0 means unlimited.
type Rule struct {
	Pattern string        `mapstructure:"pattern"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
	Burst   int           `mapstructure:"burst"`
}

// DefaultRules gives the recommendation routes, which fit a model per call,
// their own budgets. Catalogue reads fall through to the default limit.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "GET /health"},
		{Pattern: "GET /api/recommend_jobs/", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "GET /api/me/recommend_jobs/", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "GET /api/jobfairs/{id}/recommend_jobs/", Limit: 30, Window: time.Minute, Burst: 5},
		{Pattern: "GET /api/employers/{id}/recommend_jobs/", Limit: 30, Window: time.Minute, Burst: 5},
		{Pattern: "GET /api/all-jobs/", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

type compiledRule struct {
	rule     Rule
	method   string
	segments []string
	rest     bool // last segment is a {name...} wildcard
}

// matcher finds the first rule whose pattern matches a request.
type matcher struct {
	rules []compiledRule
}

func newMatcher(rules []Rule) (*matcher, error) {
	m := &matcher{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		m.rules = append(m.rules, c)
	}
	return m, nil
}

func compileRule(r Rule) (compiledRule, error) {
	c := compiledRule{rule: r}
	path := strings.TrimSpace(r.Pattern)
	if method, rest, ok := strings.Cut(path, " "); ok {
		c.method = strings.ToUpper(method)
		path = strings.TrimSpace(rest)
	}
	if !strings.HasPrefix(path, "/") {
		return c, fmt.Errorf("rate limit rule %q: path must start with /", r.Pattern)
	}
	if r.Limit < 0 {
		return c, fmt.Errorf("rate limit rule %q: negative limit", r.Pattern)
	}
	if r.Limit > 0 && r.Window <= 0 {
		return c, fmt.Errorf("rate limit rule %q: window must be positive", r.Pattern)
	}

	c.segments = strings.Split(path, "/")
	for i, seg := range c.segments {
		if !strings.HasPrefix(seg, "{") && !strings.HasSuffix(seg, "}") {
			continue
		}
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") || len(seg) < 3 {
			return c, fmt.Errorf("rate limit rule %q: malformed wildcard %q", r.Pattern, seg)
		}
		if strings.HasSuffix(seg, "...}") {
			if i != len(c.segments)-1 {
				return c, fmt.Errorf("rate limit rule %q: %q must be the last segment", r.Pattern, seg)
			}
			c.rest = true
		}
	}
	return c, nil
}

func (c *compiledRule) matches(method, path string) bool {
	if c.method != "" && c.method != method && !(c.method == http.MethodGet && method == http.MethodHead) {
		return false
	}
	segs := strings.Split(path, "/")
	pat := c.segments
	if c.rest {
		pat = pat[:len(pat)-1]
		if len(segs) < len(pat) {
			return false
		}
	} else if len(segs) != len(pat) {
		return false
	}
	for i, p := range pat {
		if strings.HasPrefix(p, "{") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}

// match returns the first matching rule, or nil.
func (m *matcher) match(method, path string) *Rule {
	for i := range m.rules {
		if m.rules[i].matches(method, path) {
			return &m.rules[i].rule
		}
	}
	return nil
}

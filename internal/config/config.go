// Package config provides configuration loading and validation for the CLI
// and the API server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/telemetry"
)

// EnvPrefix prefixes environment overrides, e.g. HANAPWEDE_RECOMMENDER_TOP_K.
const EnvPrefix = "HANAPWEDE"

// Config is the file configuration. Every field is optional; missing values
// use defaults or come from CLI flags.
type Config struct {
	DatabaseURL string `mapstructure:"database_url"` // PostgreSQL connection URL
	Snapshot    string `mapstructure:"snapshot"`     // SQLite snapshot path for offline runs
	Port        int    `mapstructure:"port"`         // HTTP listen port

	Recommender RecommenderConfig `mapstructure:"recommender"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Telemetry   telemetry.Config  `mapstructure:"telemetry"`
}

// RecommenderConfig tunes scoring and evaluation.
type RecommenderConfig struct {
	TopK                int                  `mapstructure:"top_k"`
	SkillMatchThreshold float64              `mapstructure:"skill_match_threshold"`
	RelevanceThreshold  float64              `mapstructure:"relevance_threshold"`
	JobWeights          ranking.JobWeights   `mapstructure:"job_weights"`
	QueryWeights        ranking.QueryWeights `mapstructure:"query_weights"`
}

// Options converts the recommender section into ranking options. Values are
// passed through as configured, so a skill_match_threshold of 0 accepts any
// skill overlap.
func (r RecommenderConfig) Options() ranking.Options {
	return ranking.Options{
		TopK:                r.TopK,
		SkillMatchThreshold: r.SkillMatchThreshold,
		JobWeights:          r.JobWeights,
		QueryWeights:        r.QueryWeights,
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	opts := ranking.DefaultOptions()
	return Config{
		Port: 8080,
		Recommender: RecommenderConfig{
			TopK:                opts.TopK,
			SkillMatchThreshold: opts.SkillMatchThreshold,
			RelevanceThreshold:  ranking.DefaultRelevanceThreshold,
			JobWeights:          opts.JobWeights,
			QueryWeights:        opts.QueryWeights,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Telemetry: telemetry.Config{ServiceName: "hanapwede-recommender"},
	}
}

// NewViper returns a viper instance with defaults registered and environment
// overrides enabled. DATABASE_URL, JWT_SECRET, JWT_ISSUER, REDIS_URL and the
// OTEL_EXPORTER_OTLP_* variables are honoured as fallbacks for the prefixed
// variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("snapshot", d.Snapshot)
	v.SetDefault("port", d.Port)
	v.SetDefault("recommender.top_k", d.Recommender.TopK)
	v.SetDefault("recommender.skill_match_threshold", d.Recommender.SkillMatchThreshold)
	v.SetDefault("recommender.relevance_threshold", d.Recommender.RelevanceThreshold)
	v.SetDefault("recommender.job_weights.description", d.Recommender.JobWeights.Description)
	v.SetDefault("recommender.job_weights.skills", d.Recommender.JobWeights.Skills)
	v.SetDefault("recommender.job_weights.tags", d.Recommender.JobWeights.Tags)
	v.SetDefault("recommender.job_weights.category", d.Recommender.JobWeights.Category)
	v.SetDefault("recommender.job_weights.disability", d.Recommender.JobWeights.Disability)
	v.SetDefault("recommender.query_weights.preferences", d.Recommender.QueryWeights.Preferences)
	v.SetDefault("recommender.query_weights.disability", d.Recommender.QueryWeights.Disability)
	v.SetDefault("recommender.query_weights.skills", d.Recommender.QueryWeights.Skills)
	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.jwt_issuer", d.Auth.JWTIssuer)
	v.SetDefault("auth.leeway", d.Auth.Leeway)
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.default_limit", d.RateLimit.DefaultLimit)
	v.SetDefault("rate_limit.default_window", d.RateLimit.DefaultWindow)
	v.SetDefault("rate_limit.cleanup_interval", d.RateLimit.CleanupInterval)
	v.SetDefault("rate_limit.whitelist", d.RateLimit.Whitelist)
	v.SetDefault("rate_limit.blacklist", d.RateLimit.Blacklist)
	v.SetDefault("rate_limit.redis_url", d.RateLimit.RedisURL)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.headers", d.Telemetry.Headers)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
	v.SetDefault("telemetry.service_version", d.Telemetry.ServiceVersion)

	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", EnvPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.jwt_issuer", EnvPrefix+"_AUTH_JWT_ISSUER", "JWT_ISSUER")
	_ = v.BindEnv("rate_limit.redis_url", EnvPrefix+"_RATE_LIMIT_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("telemetry.endpoint", EnvPrefix+"_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("telemetry.headers", EnvPrefix+"_TELEMETRY_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
	return v
}

// Load reads the optional config file at path (JSON or YAML, chosen by
// extension) into v and decodes the merged result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		// Resolve path relative to current directory if not absolute
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.Recommender.TopK < 0 {
		return fmt.Errorf("config error: 'recommender.top_k' must be non-negative")
	}
	if t := c.Recommender.RelevanceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config error: 'recommender.relevance_threshold' must be within [0, 1]")
	}
	if err := c.Recommender.Options().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}

	if c.Snapshot != "" {
		if _, err := os.Stat(c.Snapshot); os.IsNotExist(err) {
			return fmt.Errorf("config error: snapshot file not found: %s", c.Snapshot)
		}
	}
	return nil
}

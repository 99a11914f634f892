package config

import (
	"fmt"
	"time"
)

// minJWTSecretLen is the shortest HS256 key accepted.
const minJWTSecretLen = 32

// AuthConfig configures validation of bearer tokens minted by the job board's
// auth service. This service never issues tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	// JWTIssuer, when set, must match the token's iss claim.
	JWTIssuer string `mapstructure:"jwt_issuer"`
	// Leeway tolerates clock skew with the issuing service on exp and nbf.
	Leeway time.Duration `mapstructure:"leeway"`
}

// Enabled reports whether bearer authentication is configured. Without a
// secret the /api/me/ routes are not registered.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// Validate checks the auth section. An empty secret is valid and disables auth.
func (a AuthConfig) Validate() error {
	if a.JWTSecret != "" && len(a.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("config error: 'auth.jwt_secret' must be at least %d bytes", minJWTSecretLen)
	}
	if a.Leeway < 0 || a.Leeway > 5*time.Minute {
		return fmt.Errorf("config error: 'auth.leeway' must be between 0 and 5m, got %s", a.Leeway)
	}
	return nil
}

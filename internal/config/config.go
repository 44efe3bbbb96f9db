// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/appscout/mobbin-proxy/internal/apperrors"
)

// DefaultUpstreamURL is the Mobbin Supabase project endpoint. All auth and
// data requests go to this host unless MOBBIN_UPSTREAM_URL overrides it.
const DefaultUpstreamURL = "https://ujasntkfphywizsdaapi.supabase.co"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	// LogLevel controls logging verbosity (4=info, 5=debug)
	LogLevel    int
	Environment Environment
}

// ServerConfig holds HTTP server and CORS configuration.
type ServerConfig struct {
	Address string
	// AllowedOrigins is a comma-separated list of allowed origins for CORS
	AllowedOrigins string
}

// UpstreamConfig holds the credentials and connection parameters for the
// Mobbin backend.
type UpstreamConfig struct {
	BaseURL string

	// APIKey identifies this application to the upstream service. Required;
	// startup fails without it.
	APIKey string

	// SessionToken optionally primes the client with an existing bearer
	// token so data routes work without a login call.
	SessionToken string

	// RequestTimeout bounds every outbound call. Exceeding it is treated as
	// an upstream transport failure.
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables.
// Returns a configuration error when the mandatory API key is absent.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address:        getEnv("MOBBIN_SERVER_ADDRESS", ":8080"),
			AllowedOrigins: getEnv("MOBBIN_ALLOWED_ORIGINS", ""),
		},
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("MOBBIN_UPSTREAM_URL", DefaultUpstreamURL),
			APIKey:         getEnv("MOBBIN_API_KEY", ""),
			SessionToken:   getEnv("MOBBIN_SESSION_TOKEN", ""),
			RequestTimeout: getEnvDuration("MOBBIN_REQUEST_TIMEOUT", 20*time.Second),
		},
		LogLevel:    getEnvInt("MOBBIN_LOG_LEVEL", 4),
		Environment: Environment(getEnv("MOBBIN_ENV", string(EnvDevelopment))),
	}

	if cfg.Upstream.APIKey == "" {
		return nil, apperrors.Configuration("MOBBIN_API_KEY is required")
	}
	if !cfg.Environment.IsValid() {
		return nil, apperrors.Configuration("MOBBIN_ENV must be development or production")
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of the environment variable key, or
// defaultValue if unset or not a number.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration returns the duration value of the environment variable key
// (Go duration syntax, e.g. "20s"), or defaultValue if unset or unparsable.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "WARNING: ignoring invalid duration %s=%q\n", key, value)
	}
	return defaultValue
}

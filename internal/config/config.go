// Package config defines the global configuration for the Maya admin
// dashboard API. Configuration is loaded once at process start and is
// immutable thereafter, following 12-Factor principles: values come from the
// OS environment, optionally seeded from a .env file for local development.
//
// Any missing required value or invalid format fails the process immediately
// on startup (fail fast).
package config

import (
	"time"

	"mayadmin/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for credentials to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Razorpay RazorpayConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// RazorpayConfig holds payment provider credentials and the operational
// constants of the payment enumeration. The ceiling, batch size, cache TTL
// and test-contact denylist are environment-specific tunables rather than
// design constants, so they live here with the original deployment's values
// as defaults.
type RazorpayConfig struct {
	KeyID     string       `envconfig:"RAZORPAY_KEY_ID" validate:"required"`
	KeySecret SecretString `envconfig:"RAZORPAY_KEY_SECRET" validate:"required"`
	BaseURL   string       `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`

	BatchSize       int           `envconfig:"PAYMENTS_BATCH_SIZE" default:"100"`
	MaxSkip         int           `envconfig:"PAYMENTS_MAX_SKIP" default:"10000"`
	CacheTTL        time.Duration `envconfig:"PAYMENTS_CACHE_TTL" default:"2m"`
	IgnoredContacts []string      `envconfig:"PAYMENTS_IGNORED_CONTACTS" default:"+919515235212,919515235212,cherry.workspace.mail@gmail.com"`
}

// SecurityConfig holds CORS and rate limiting settings for the dashboard's
// browser clients.
type SecurityConfig struct {
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitInterval  time.Duration `envconfig:"RATE_LIMIT_INTERVAL" default:"100ms"`
	RateLimitBurst     int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

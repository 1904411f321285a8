// Package config loads almanac configuration from environment variables.
// No other package reads the environment; values reach the rest of the
// program through the Config struct.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config holds all application configuration.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// CalendarDir is a directory of calendar snapshot files to load and
	// watch. Empty disables file loading; only presets are served.
	CalendarDir string

	// Redis holds derived-result cache settings.
	Redis RedisConfig

	// Auth holds the game-master key settings.
	Auth AuthConfig

	// RateLimit bounds API requests per client IP.
	RateLimit RateLimitConfig

	// CORSOrigins lists origins allowed to call the API from a browser,
	// e.g. a Foundry VTT instance. Empty disables CORS headers.
	CORSOrigins []string

	// TrustedProxies lists CIDRs whose X-Forwarded-For and X-Real-IP
	// headers are believed when resolving the client IP.
	TrustedProxies []string

	// AuditCapacity is how many calendar changes the audit log keeps.
	AuditCapacity int
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL. Empty disables the cache.
	URL string

	// TTL is how long derived results stay cached.
	TTL time.Duration
}

// AuthConfig holds the credentials that guard configuration writes.
type AuthConfig struct {
	// GMKeyHash is a bcrypt hash of the game-master key. Produce one with
	// `almanac hash-key`. Empty disables writes outside development.
	GMKeyHash string
}

// RateLimitConfig is a token bucket per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from environment variables with defaults
// suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		CalendarDir: getEnv("CALENDAR_DIR", ""),

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvDuration("CACHE_TTL", 10*time.Minute),
		},

		Auth: AuthConfig{
			GMKeyHash: getEnv("GM_KEY_HASH", ""),
		},

		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst: getEnvInt("RATE_LIMIT_BURST", 40),
		},

		CORSOrigins: getEnvList("CORS_ORIGINS", nil),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{
			"127.0.0.0/8",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"fd00::/8",
		}),

		AuditCapacity: getEnvInt("AUDIT_CAPACITY", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges. The GM key hash is mandatory in production
// so that configuration writes are never left open.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Auth, validation.By(func(interface{}) error {
			if c.IsProduction() && c.Auth.GMKeyHash == "" {
				return fmt.Errorf("GM_KEY_HASH is required in production")
			}
			if c.Auth.GMKeyHash != "" && !strings.HasPrefix(c.Auth.GMKeyHash, "$2") {
				return fmt.Errorf("GM_KEY_HASH must be a bcrypt hash")
			}
			return nil
		})),
		validation.Field(&c.TrustedProxies, validation.Each(is.CIDR)),
		validation.Field(&c.AuditCapacity, validation.Min(1)),
		validation.Field(&c.RateLimit, validation.By(func(interface{}) error {
			if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
				return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
			}
			return nil
		})),
	)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction matches common spellings of the production environment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// SlogLevel maps LogLevel to a slog level, Info when unrecognized.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvFloat reads a float env var or returns the default.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "15m") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping empty items, or
// returns the default when unset.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

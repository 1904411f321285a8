package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENV", "PORT", "LOG_LEVEL", "CALENDAR_DIR", "REDIS_URL", "CACHE_TTL", "GM_KEY_HASH", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(k, "")
	}
	// t.Setenv cannot unset, so restore the defaults the loader would pick.
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("RATE_LIMIT_RPS", "20")
	t.Setenv("RATE_LIMIT_BURST", "40")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || !cfg.IsDevelopment() || cfg.Redis.TTL != 10*time.Minute {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Redis.URL != "" {
		t.Errorf("cache should be disabled by default, got %q", cfg.Redis.URL)
	}
}

func TestLoad_ProductionRequiresGMKey(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("GM_KEY_HASH", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without GM_KEY_HASH in production")
	}

	t.Setenv("GM_KEY_HASH", "$2a$10$abcdefghijklmnopqrstuuJrQ0dz0D4dpfE4vdOxbX4QY1y9pR7yC")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with hash: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Env: "development", Port: 8080, LogLevel: "info", RateLimit: RateLimitConfig{RPS: 1, Burst: 1}}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port out of range", func(c *Config) { c.Port = 70000 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"plain-text key", func(c *Config) { c.Auth.GMKeyHash = "hunter2" }, true},
		{"zero rate", func(c *Config) { c.RateLimit.RPS = 0 }, true},
		{"bad proxy cidr", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/33"} }, true},
		{"proxy cidrs", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "fd00::/8"} }, false},
		{"negative audit capacity", func(c *Config) { c.AuditCapacity = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Lists(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("CORS_ORIGINS", " https://foundry.example.com, ,http://localhost:30000 ")
	t.Setenv("TRUSTED_PROXIES", "10.1.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://foundry.example.com" || cfg.CORSOrigins[1] != "http://localhost:30000" {
		t.Errorf("unexpected CORS origins %q", cfg.CORSOrigins)
	}
	if len(cfg.TrustedProxies) != 1 || cfg.TrustedProxies[0] != "10.1.0.0/16" {
		t.Errorf("unexpected trusted proxies %q", cfg.TrustedProxies)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

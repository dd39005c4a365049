// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver  string `env:"CORPCMS_DB_DRIVER" envDefault:"sqlite"` // sqlite or mysql
	DBDSN     string `env:"CORPCMS_DB_DSN" envDefault:"./data/corpcms.db"`
	JWTSecret string `env:"CORPCMS_JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"CORPCMS_TOKEN_TTL" envDefault:"2h"`

	ServerHost string `env:"CORPCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CORPCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"CORPCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"CORPCMS_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"CORPCMS_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration (view-count dedup and setting lookups)
	RedisURL     string `env:"CORPCMS_REDIS_URL"` // Optional Redis URL for distributed caching
	CachePrefix  string `env:"CORPCMS_CACHE_PREFIX" envDefault:"corpcms:"`
	CacheMaxSize int    `env:"CORPCMS_CACHE_MAX_SIZE" envDefault:"10000"`

	// GeoIP configuration for the traffic log
	GeoIPDBPath string `env:"CORPCMS_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// TrafficRetentionDays controls how long traffic log rows are kept.
	TrafficRetentionDays int `env:"CORPCMS_TRAFFIC_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"CORPCMS_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinJWTSecretLength is the minimum required length for the token signing
// secret. HMAC-SHA256 wants at least 32 bytes of key material.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "mysql" {
		return nil, fmt.Errorf("CORPCMS_DB_DRIVER must be sqlite or mysql, got %q", cfg.DBDriver)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("CORPCMS_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("CORPCMS_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("CORPCMS_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("CORPCMS_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}

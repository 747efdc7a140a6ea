// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds settings read once at startup and treated as immutable.
type Config struct {
	Port string

	// DatabaseURL selects the Postgres backend when set; otherwise the
	// SQLite file at DatabasePath is used.
	DatabaseURL  string
	DatabasePath string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	BcryptCost   int

	PageCacheTTL time.Duration

	LoginRatePerMinute int
	LoginBurst         int

	SeedDemo bool
}

// Load reads Config from the environment. It returns an error naming the
// first variable that is missing or out of range.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnvString("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabasePath: getEnvString("DATABASE_PATH", "invoices.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		// Default to secure cookies; disable only for local development.
		CookieSecure: os.Getenv("COOKIE_SECURE") != "false",
		SeedDemo:     os.Getenv("SEED_DEMO") == "true",
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}

	var err error
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost)
	}

	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PageCacheTTL, err = getEnvDuration("PAGE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerMinute, err = getEnvInt("LOGIN_RATE_PER_MINUTE", 10); err != nil {
		return nil, err
	}
	if cfg.LoginBurst, err = getEnvInt("LOGIN_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerMinute < 1 || cfg.LoginBurst < 1 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE and LOGIN_BURST must be positive")
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

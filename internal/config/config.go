// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis), also the session store
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"librarydb_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// Lending
	BorrowPeriod time.Duration `env:"BORROW_PERIOD" envDefault:"336h"`

	// Mini search
	MiniSearchLimit int `env:"MINI_SEARCH_LIMIT" envDefault:"10"`

	// Rate limiting
	RateLimitSearchEnabled bool `env:"RATE_LIMIT_SEARCH_ENABLED" envDefault:"true"`
	RateLimitSearchRPS     int  `env:"RATE_LIMIT_SEARCH_RPS" envDefault:"20"`
	RateLimitSearchBurst   int  `env:"RATE_LIMIT_SEARCH_BURST" envDefault:"10"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.AppPort)
	}
	if c.BorrowPeriod <= 0 {
		return fmt.Errorf("BORROW_PERIOD must be positive, got %s", c.BorrowPeriod)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.MiniSearchLimit <= 0 {
		return fmt.Errorf("MINI_SEARCH_LIMIT must be positive, got %d", c.MiniSearchLimit)
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if c.RateLimitSearchEnabled {
		if c.RateLimitSearchRPS <= 0 {
			return fmt.Errorf("RATE_LIMIT_SEARCH_RPS must be positive, got %d", c.RateLimitSearchRPS)
		}
		if c.RateLimitSearchBurst <= 0 {
			return fmt.Errorf("RATE_LIMIT_SEARCH_BURST must be positive, got %d", c.RateLimitSearchBurst)
		}
	}
	return nil
}

// Load parses environment variables and returns a Config.
// In development a .env file in the working directory is read first;
// variables already set in the environment take precedence.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	if appEnv := os.Getenv("APP_ENV"); appEnv == "" || appEnv == "development" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

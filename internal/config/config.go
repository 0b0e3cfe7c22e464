package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full client configuration surface.
type Config struct {
	API     APIConfig
	State   StateConfig
	Logging LoggingConfig
}

// APIConfig holds options for the backend REST transport.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StateConfig locates the durable session store.
type StateConfig struct {
	Path string
}

// LoggingConfig holds structured-logging options.
type LoggingConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeout, err := parseTimeout(getenvWithDefault("DAIRY_HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: getenvWithDefault("DAIRY_API_URL", "http://localhost:5000/api"),
			Timeout: timeout,
		},
		State: StateConfig{
			Path: getenvWithDefault("DAIRY_STATE_PATH", defaultStatePath()),
		},
		Logging: LoggingConfig{
			Level: getenvWithDefault("DAIRY_LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.API.BaseURL == "" {
		return errors.New("DAIRY_API_URL must not be empty")
	}

	if c.API.Timeout <= 0 {
		return errors.New("DAIRY_HTTP_TIMEOUT must be positive")
	}

	if c.State.Path == "" {
		return errors.New("DAIRY_STATE_PATH must not be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported DAIRY_LOG_LEVEL %q", c.Logging.Level)
	}

	return nil
}

func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid DAIRY_HTTP_TIMEOUT %q: %w", raw, err)
	}
	return d, nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dairyctl.db"
	}
	return filepath.Join(home, ".dairyctl", "state.db")
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

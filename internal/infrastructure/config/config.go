// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.Path
//	cookie := cfg.Platforms.Swiggy.Cookie
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Platforms     PlatformsConfig     `yaml:"platforms"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Analytics     AnalyticsConfig     `yaml:"analytics"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PlatformsConfig holds per-platform settings
type PlatformsConfig struct {
	Zomato PlatformConfig `yaml:"zomato"`
	Swiggy PlatformConfig `yaml:"swiggy"`
}

// PlatformConfig overrides a platform's defaults. Zero values keep the
// built-in default.
type PlatformConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	Cookie    string `yaml:"cookie"` // session cookie header copied from a logged-in browser
	UserAgent string `yaml:"user_agent"`
	MaxPages  int    `yaml:"max_pages"`
	Delay     string `yaml:"delay"`  // e.g. "1s"
	Jitter    string `yaml:"jitter"` // e.g. "1s"
	Timeout   string `yaml:"timeout"`
	RetryMax  int    `yaml:"retry_max"`
}

// StorageConfig selects the key-value backend
type StorageConfig struct {
	Backend string `yaml:"backend"` // sqlite, pebble, memory
	Path    string `yaml:"path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AnalyticsConfig holds report settings
type AnalyticsConfig struct {
	Timezone string `yaml:"timezone"` // IANA name; empty means local time
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text (Maven-style) or json
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${SWIGGY_COOKIE})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Platforms: PlatformsConfig{
			Zomato: PlatformConfig{
				Enabled:  getEnvBool("ZOMATO_ENABLED", true),
				BaseURL:  os.Getenv("ZOMATO_BASE_URL"),
				Cookie:   os.Getenv("ZOMATO_COOKIE"),
				MaxPages: getEnvInt("ZOMATO_MAX_PAGES", 0),
			},
			Swiggy: PlatformConfig{
				Enabled:  getEnvBool("SWIGGY_ENABLED", true),
				BaseURL:  os.Getenv("SWIGGY_BASE_URL"),
				Cookie:   os.Getenv("SWIGGY_COOKIE"),
				MaxPages: getEnvInt("SWIGGY_MAX_PAGES", 0),
			},
		},
		Storage: StorageConfig{
			Backend: getEnv("FOODTRACKER_STORE", "sqlite"),
			Path:    getEnv("FOODTRACKER_DB_PATH", "foodtracker.db"),
		},
		API: APIConfig{
			Port:           getEnvInt("FOODTRACKER_PORT", 8085),
			AllowedOrigins: splitList(getEnv("FOODTRACKER_ALLOWED_ORIGINS", "")),
		},
		Analytics: AnalyticsConfig{
			Timezone: os.Getenv("FOODTRACKER_TZ"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// ApplyDefaults fills unset storage, api and logging values.
func (c *Config) ApplyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case "pebble":
			c.Storage.Path = "foodtracker.pebble"
		default:
			c.Storage.Path = "foodtracker.db"
		}
	}
	if c.API.Port == 0 {
		c.API.Port = 8085
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Location resolves the analytics time zone. Unknown names are an error.
func (c AnalyticsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("analytics timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Durations parses the delay, jitter and timeout strings. Empty strings
// yield zero, which callers treat as "use the default".
func (p PlatformConfig) Durations() (delay, jitter, timeout time.Duration, err error) {
	if delay, err = parseDuration(p.Delay); err != nil {
		return 0, 0, 0, fmt.Errorf("delay: %w", err)
	}
	if jitter, err = parseDuration(p.Jitter); err != nil {
		return 0, 0, 0, fmt.Errorf("jitter: %w", err)
	}
	if timeout, err = parseDuration(p.Timeout); err != nil {
		return 0, 0, 0, fmt.Errorf("timeout: %w", err)
	}
	return delay, jitter, timeout, nil
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvBool accepts true/false/1/0
func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

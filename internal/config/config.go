// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Upstream data source
	DataSource           string
	UpstreamBaseURL      string
	UpstreamServiceToken string
	DataDirectory        string

	// Snapshot persistence; empty path disables it
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Refresh
	RefreshSchedule string
	RefreshTimeout  time.Duration

	// View cache
	CacheTTL  time.Duration
	CacheSize int

	// Report export; export endpoint is disabled without a spreadsheet id
	GoogleSpreadsheetID string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataSource:           getEnv("DATA_SOURCE", "rest"),
		UpstreamBaseURL:      getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		UpstreamServiceToken: getEnv("UPSTREAM_SERVICE_TOKEN", ""),
		DataDirectory:        getEnv("DATA_DIRECTORY", "data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kindra"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "refresh_requests"),

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 5m"),
		RefreshTimeout:  getEnvDuration("REFRESH_TIMEOUT", 30*time.Second),

		CacheTTL:  getEnvDuration("CACHE_TTL", 30*time.Second),
		CacheSize: getEnvInt("CACHE_SIZE", 512),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
	}
}

// ExportEnabled reports whether the report export endpoint has a backend.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataSource {
	case "rest":
		if c.UpstreamBaseURL == "" {
			errors = append(errors, "upstream base URL cannot be empty when using the rest source")
		} else if parsed, err := url.Parse(c.UpstreamBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid upstream base URL '%s': %v", c.UpstreamBaseURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid upstream base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	case "memory":
		// DataDirectory defaults to "data" when empty.
	default:
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of [memory rest]", c.DataSource))
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RefreshTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh timeout %v: must be at least 1 second", c.RefreshTimeout))
	} else if c.RefreshTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid refresh timeout %v: must be at most 10 minutes", c.RefreshTimeout))
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP tool server
	Port string

	// Budgeting API
	AccessToken string
	APIBaseURL  string

	// Request execution
	RequestTimeout time.Duration // per attempt, not cumulative
	MaxRetries     int           // additional attempts after the first
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	PageSize       int

	// Quota
	QuotaPerHour int
	QuotaDBPath  string

	// Reference-data cache
	CacheTTL time.Duration

	// Logging
	LogLevel string

	// Google Sheets export (optional; empty spreadsheet ID disables it)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		AccessToken: getEnv("YNAB_ACCESS_TOKEN", ""),
		APIBaseURL:  getEnv("YNAB_API_URL", "https://api.ynab.com/v1"),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		BackoffBase:    getEnvDuration("BACKOFF_BASE", 500*time.Millisecond),
		BackoffMax:     getEnvDuration("BACKOFF_MAX", 30*time.Second),
		PageSize:       getEnvInt("PAGE_SIZE", 200),

		QuotaPerHour: getEnvInt("QUOTA_PER_HOUR", 200),
		QuotaDBPath:  getEnv("QUOTA_DB_PATH", "./data/quota.db"),

		CacheTTL: getEnvDuration("REFERENCE_CACHE_TTL", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Summaries"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.AccessToken) == "" {
		errors = append(errors, "YNAB_ACCESS_TOKEN must be set (create a personal access token in the budgeting app's developer settings)")
	}

	if parsed, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIBaseURL, err))
	} else if parsed.Scheme != "https" && parsed.Scheme != "http" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'https' or 'http'", parsed.Scheme))
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid max retries %d: must be between 0 and 10", c.MaxRetries))
	}

	if c.BackoffBase <= 0 {
		errors = append(errors, fmt.Sprintf("invalid backoff base %v: must be positive", c.BackoffBase))
	}
	if c.BackoffMax < c.BackoffBase {
		errors = append(errors, fmt.Sprintf("invalid backoff cap %v: must be at least the base delay %v", c.BackoffMax, c.BackoffBase))
	}

	if c.PageSize < 1 || c.PageSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be between 1 and 1000", c.PageSize))
	}

	if c.QuotaPerHour < 1 {
		errors = append(errors, fmt.Sprintf("invalid hourly quota %d: must be at least 1", c.QuotaPerHour))
	}
	if c.QuotaDBPath == "" {
		errors = append(errors, "quota ledger path cannot be empty")
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name cannot be empty when a spreadsheet ID is configured")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ExportEnabled reports whether the Sheets exporter is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
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

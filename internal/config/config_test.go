package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:           "8082",
		AccessToken:    "token-123",
		APIBaseURL:     "https://api.ynab.com/v1",
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		BackoffBase:    500 * time.Millisecond,
		BackoffMax:     30 * time.Second,
		PageSize:       200,
		QuotaPerHour:   200,
		QuotaDBPath:    "./data/quota.db",
		CacheTTL:       5 * time.Minute,
		LogLevel:       "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing access token",
			mutate:      func(c *Config) { c.AccessToken = "  " },
			wantErr:     true,
			errorString: "YNAB_ACCESS_TOKEN must be set",
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid API URL scheme",
			mutate:      func(c *Config) { c.APIBaseURL = "ftp://api.ynab.com/v1" },
			wantErr:     true,
			errorString: "invalid API URL scheme 'ftp'",
		},
		{
			name:        "timeout too short",
			mutate:      func(c *Config) { c.RequestTimeout = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid request timeout",
		},
		{
			name:        "negative retries",
			mutate:      func(c *Config) { c.MaxRetries = -1 },
			wantErr:     true,
			errorString: "invalid max retries -1",
		},
		{
			name:        "backoff cap below base",
			mutate:      func(c *Config) { c.BackoffMax = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid backoff cap",
		},
		{
			name:        "page size out of range",
			mutate:      func(c *Config) { c.PageSize = 0 },
			wantErr:     true,
			errorString: "invalid page size 0",
		},
		{
			name:        "zero quota",
			mutate:      func(c *Config) { c.QuotaPerHour = 0 },
			wantErr:     true,
			errorString: "invalid hourly quota 0",
		},
		{
			name: "sheet name required with spreadsheet",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "spreadsheet-1"
				c.GoogleSheetName = ""
			},
			wantErr:     true,
			errorString: "Google sheet name cannot be empty",
		},
		{
			name: "multiple errors are collected",
			mutate: func(c *Config) {
				c.AccessToken = ""
				c.Port = "abc"
			},
			wantErr:     true,
			errorString: "invalid port 'abc'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q should contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIBaseURL != "https://api.ynab.com/v1" {
		t.Fatalf("unexpected default API URL: %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.RequestTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("unexpected default retries: %d", cfg.MaxRetries)
	}
	if cfg.QuotaPerHour != 200 {
		t.Fatalf("unexpected default quota: %d", cfg.QuotaPerHour)
	}
	if cfg.ExportEnabled() {
		t.Fatal("export should be disabled without a spreadsheet ID")
	}
}

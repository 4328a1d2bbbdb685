package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.CountryPrefix != "233" {
		t.Errorf("CountryPrefix = %s, want 233", cfg.CountryPrefix)
	}
	if cfg.ConfigLoadTimeout != 5*time.Second {
		t.Errorf("ConfigLoadTimeout = %v, want 5s", cfg.ConfigLoadTimeout)
	}
	if cfg.AuditWriteTimeout != 3*time.Second {
		t.Errorf("AuditWriteTimeout = %v, want 3s", cfg.AuditWriteTimeout)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Errorf("ProviderTimeout = %v, want 10s", cfg.ProviderTimeout)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Errorf("RateLimitPerMinute = %d, want 60", cfg.RateLimitPerMinute)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CONFIG_LOAD_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "250")
	t.Setenv("MNOTIFY_BASE_URL", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.ConfigLoadTimeout != 2*time.Second {
		t.Errorf("ConfigLoadTimeout = %v, want 2s", cfg.ConfigLoadTimeout)
	}
	if cfg.RateLimitPerMinute != 250 {
		t.Errorf("RateLimitPerMinute = %d, want 250", cfg.RateLimitPerMinute)
	}
	if cfg.MNotifyBaseURL != "http://localhost:9999" {
		t.Errorf("MNotifyBaseURL = %s, want http://localhost:9999", cfg.MNotifyBaseURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
}

func TestLoad_RequiredFields(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseDSN == "" {
		t.Error("DatabaseDSN should not be empty")
	}
	if cfg.RedisURL == "" {
		t.Error("RedisURL should not be empty")
	}
}

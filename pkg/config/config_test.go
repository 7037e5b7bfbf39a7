package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.DataDir != "data" {
		t.Errorf("Expected DataDir to be data, got %s", cfg.DataDir)
	}

	if cfg.Retention.HourlyKeep != 168 {
		t.Errorf("Expected HourlyKeep to be 168, got %d", cfg.Retention.HourlyKeep)
	}

	if cfg.Retention.LogDir != filepath.Join("data", "logs") {
		t.Errorf("Expected LogDir to be data/logs, got %s", cfg.Retention.LogDir)
	}

	if cfg.Retention.MappingMaxAge != 24*time.Hour {
		t.Errorf("Expected MappingMaxAge to be 24h, got %v", cfg.Retention.MappingMaxAge)
	}

	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATA_DIR", "/var/lib/geflip")
	t.Setenv("HOURLY_RETENTION", "48")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PRICES_RATE_PER_SEC", "0.5")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.DataDir != "/var/lib/geflip" {
		t.Errorf("Expected DataDir to be /var/lib/geflip, got %s", cfg.DataDir)
	}

	if cfg.Retention.LogDir != "/var/lib/geflip/logs" {
		t.Errorf("Expected LogDir under DATA_DIR, got %s", cfg.Retention.LogDir)
	}

	if cfg.Retention.HourlyKeep != 48 {
		t.Errorf("Expected HourlyKeep to be 48, got %d", cfg.Retention.HourlyKeep)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}

	if cfg.Prices.RatePerSec != 0.5 {
		t.Errorf("Expected RatePerSec to be 0.5, got %v", cfg.Prices.RatePerSec)
	}

	if !cfg.Redis.Enabled {
		t.Error("Expected Redis to be enabled")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateRetention(t *testing.T) {
	t.Setenv("HOURLY_RETENTION", "0")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when HOURLY_RETENTION is 0, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}

	t.Setenv("TEST_DURATION", "garbage")
	if got := getEnvAsDuration("TEST_DURATION", "1h"); got != time.Hour {
		t.Errorf("Expected fallback to 1h, got %v", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "1.5")

	value := getEnvAsFloat("TEST_FLOAT", 2)
	if value != 1.5 {
		t.Errorf("Expected value to be 1.5, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}

func TestLoadFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("GEFLIP_TEST_AGENT=from-file\nPRICES_USER_AGENT=${GEFLIP_TEST_AGENT}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GEFLIP_TEST_AGENT")
		os.Unsetenv("PRICES_USER_AGENT")
	})

	cfg, err := LoadFile(envFile)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Prices.UserAgent != "from-file" {
		t.Errorf("Expected user agent from env file, got %q", cfg.Prices.UserAgent)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for missing env file, got nil")
	}
}

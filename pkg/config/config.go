package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Snapshot data
	DataDir      string // mapping.json, latest.json, 1h-*.json
	StrategyFile string // 비어 있으면 기본 전략

	// Redis
	Redis RedisConfig

	// External APIs
	Prices PricesConfig

	// Snapshot retention
	Retention RetentionConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PricesConfig holds the price API configuration
type PricesConfig struct {
	BaseURL    string
	UserAgent  string // API 정책상 식별 가능한 User-Agent 필수
	RatePerSec float64
	Timeout    time.Duration
}

// RetentionConfig holds snapshot rotation configuration
type RetentionConfig struct {
	HourlyKeep    int           // 보관할 1h 스냅샷 파일 수
	LogDir        string        // 5m JSONL 로그 디렉터리
	LogKeepDays   int           // 보관할 일별 로그 수
	MappingMaxAge time.Duration // mapping.json 갱신 주기
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit .env file (empty = search default locations)
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		// Try multiple paths for .env file
		loadEnvFile()
	}

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DataDir:      dataDir,
		StrategyFile: getEnv("STRATEGY_FILE", ""),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Prices: PricesConfig{
			BaseURL:    getEnv("PRICES_BASE_URL", "https://prices.runescape.wiki/api/v1/osrs"),
			UserAgent:  getEnv("PRICES_USER_AGENT", "geflip-collector/1.0"),
			RatePerSec: getEnvAsFloat("PRICES_RATE_PER_SEC", 2),
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", "10s"),
		},

		Retention: RetentionConfig{
			HourlyKeep:    getEnvAsInt("HOURLY_RETENTION", 168),
			LogDir:        getEnv("LOG_DIR", filepath.Join(dataDir, "logs")),
			LogKeepDays:   getEnvAsInt("LOG_KEEP_DAYS", 7),
			MappingMaxAge: getEnvAsDuration("MAPPING_MAX_AGE", "24h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Retention.HourlyKeep < 1 {
		return fmt.Errorf("HOURLY_RETENTION must be >= 1")
	}
	if c.Retention.LogKeepDays < 1 {
		return fmt.Errorf("LOG_KEEP_DAYS must be >= 1")
	}
	if c.Prices.RatePerSec <= 0 {
		return fmt.Errorf("PRICES_RATE_PER_SEC must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// BackendConfig holds the connection settings for one upstream backend.
type BackendConfig struct {
	BaseURL  string
	APIKey   string
	Secret   string // only backends with two-part credentials set this
	Username string // the mainframe bridge uses basic auth
	Password string
}

// BackupConfig holds settings for the cache snapshot backup job.
type BackupConfig struct {
	Enabled         bool
	Endpoint        string // S3-compatible endpoint URL
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	RetentionDays   int
}

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the cache database (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Fan-out tuning
	MaxConcurrency int
	BatchTimeout   time.Duration

	// Breaker tuning
	BreakerThreshold int
	BreakerCooldown  time.Duration

	// Upstream backends
	Bank       BackendConfig
	CreditCard BackendConfig
	Loan       BackendConfig
	Investment BackendConfig
	Legacy     BackendConfig
	Crypto     BackendConfig

	Backup BackupConfig
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Resolve the data directory to an absolute path and make sure it exists
	// before anything tries to open a database under it.
	dataDir := getEnv("AQS_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("AQS_PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		MaxConcurrency: getEnvAsInt("AQS_MAX_CONCURRENCY", 50),
		BatchTimeout:   getEnvAsDuration("AQS_BATCH_TIMEOUT", 2000*time.Millisecond),

		BreakerThreshold: getEnvAsInt("AQS_BREAKER_THRESHOLD", 5),
		BreakerCooldown:  getEnvAsDuration("AQS_BREAKER_COOLDOWN", 30*time.Second),

		Bank: BackendConfig{
			BaseURL: getEnv("BANK_BASE_URL", "http://localhost:9001"),
			APIKey:  getEnv("BANK_API_KEY", ""),
		},
		CreditCard: BackendConfig{
			BaseURL: getEnv("CARD_BASE_URL", "http://localhost:9002"),
			APIKey:  getEnv("CARD_API_TOKEN", ""),
		},
		Loan: BackendConfig{
			BaseURL: getEnv("LOAN_BASE_URL", "http://localhost:9003"),
			APIKey:  getEnv("LOAN_API_KEY", ""),
		},
		Investment: BackendConfig{
			BaseURL: getEnv("BROKER_BASE_URL", "http://localhost:9004"),
			APIKey:  getEnv("BROKER_API_KEY", ""),
			Secret:  getEnv("BROKER_API_SECRET", ""),
		},
		Legacy: BackendConfig{
			BaseURL:  getEnv("MAINFRAME_BASE_URL", "http://localhost:9005"),
			Username: getEnv("MAINFRAME_USER", ""),
			Password: getEnv("MAINFRAME_PASSWORD", ""),
		},
		Crypto: BackendConfig{
			BaseURL: getEnv("WALLET_BASE_URL", "http://localhost:9006"),
			APIKey:  getEnv("WALLET_API_KEY", ""),
		},

		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:          getEnv("BACKUP_S3_BUCKET", "aqs-backups"),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 14),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("AQS_MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("AQS_BATCH_TIMEOUT must be positive, got %s", c.BatchTimeout)
	}
	if c.Backup.Enabled && c.Backup.Endpoint == "" {
		return fmt.Errorf("BACKUP_S3_ENDPOINT is required when backups are enabled")
	}
	return nil
}

// CacheDBPath returns the path of the cache database file.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

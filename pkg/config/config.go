package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Dune   DuneConfig
	Certik CertikConfig
	Market MarketConfig

	// Scoring
	Scoring ScoringConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DuneConfig holds Dune Analytics API configuration
type DuneConfig struct {
	APIKey       string
	BaseURL      string
	RatePerSec   int           // request budget against the Dune API
	PollInterval time.Duration // initial delay between execution status polls
	PollTimeout  time.Duration // give up waiting for a query execution
	CacheTTL     time.Duration // Redis cache TTL for query results
}

// CertikConfig holds Certik Skynet API configuration
type CertikConfig struct {
	APIKey  string
	BaseURL string
}

// MarketConfig holds market data provider configuration
type MarketConfig struct {
	BaseURL string
}

// ScoringConfig holds scoring pipeline configuration.
// Weight overrides for the engine itself live in internal/scoring; these are
// the operational knobs for the recompute pipeline.
type ScoringConfig struct {
	WindowMonths int    // trailing window for revenue/user metrics
	Workers      int    // bounded worker pool size for per-protocol fan-out
	RefreshCron  string // cron spec for the daily scoring pass

	// Engine weight overrides. Diversification gets 1 - StabilityWeight.
	StabilityWeight    float64
	MagnitudeReference float64 // reference monthly revenue in USD
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "how3"),
			User:            getEnv("DB_USER", "how3"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External APIs
		Dune: DuneConfig{
			APIKey:       getEnv("DUNE_API_KEY", ""),
			BaseURL:      getEnv("DUNE_BASE_URL", "https://api.dune.com/api/v1"),
			RatePerSec:   getEnvAsInt("DUNE_RATE_PER_SEC", 2),
			PollInterval: getEnvAsDuration("DUNE_POLL_INTERVAL", "2s"),
			PollTimeout:  getEnvAsDuration("DUNE_POLL_TIMEOUT", "3m"),
			CacheTTL:     getEnvAsDuration("DUNE_CACHE_TTL", "6h"),
		},

		Certik: CertikConfig{
			APIKey:  getEnv("CERTIK_API_KEY", ""),
			BaseURL: getEnv("CERTIK_BASE_URL", "https://skynet-api.certik.com/v1"),
		},

		Market: MarketConfig{
			BaseURL: getEnv("MARKET_BASE_URL", "https://api.coingecko.com/api/v3"),
		},

		// Scoring
		Scoring: ScoringConfig{
			WindowMonths:       getEnvAsInt("SCORING_WINDOW_MONTHS", 12),
			Workers:            getEnvAsInt("SCORING_WORKERS", 8),
			RefreshCron:        getEnv("SCORING_REFRESH_CRON", "0 0 6 * * *"),
			StabilityWeight:    getEnvAsFloat("SCORING_STABILITY_WEIGHT", 0.7),
			MagnitudeReference: getEnvAsFloat("SCORING_MAGNITUDE_REF", 5_000_000),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scoring.WindowMonths <= 0 {
		return fmt.Errorf("SCORING_WINDOW_MONTHS must be positive")
	}

	if c.Scoring.Workers <= 0 {
		return fmt.Errorf("SCORING_WORKERS must be positive")
	}

	if c.Scoring.StabilityWeight < 0 || c.Scoring.StabilityWeight > 1 {
		return fmt.Errorf("SCORING_STABILITY_WEIGHT must be in [0, 1]")
	}

	if c.Scoring.MagnitudeReference <= 0 {
		return fmt.Errorf("SCORING_MAGNITUDE_REF must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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

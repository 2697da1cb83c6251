// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Directory for the persistent price cache (always absolute)
	LogLevel       string
	Port           int
	DevMode        bool
	AllowedOrigins []string

	// Price data
	HistoryPeriod  string        // Lookback period for analysis requests (e.g. "1y", "6mo")
	PriceCacheTTL  time.Duration // Freshness window for the stock price snapshot
	YahooHosts     []string      // Chart API hosts, tried in order
	YahooRateLimit int           // Requests per second against Yahoo

	// AI client profiles
	GroqAPIKey string
	AIBaseURL  string
	AIModel    string

	// Background jobs (cron specs)
	CacheCleanupSchedule string
	PriceWarmSchedule    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              dataDir,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnvAsInt("PORT", 8000),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		AllowedOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		HistoryPeriod:        getEnv("HISTORY_PERIOD", "1y"),
		PriceCacheTTL:        getEnvAsDuration("PRICE_CACHE_TTL", 5*time.Minute),
		YahooHosts:           getEnvAsList("YAHOO_HOSTS", []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}),
		YahooRateLimit:       getEnvAsInt("YAHOO_RATE_LIMIT", 5),
		GroqAPIKey:           getEnv("GROQ_API_KEY", ""),
		AIBaseURL:            getEnv("AI_BASE_URL", "https://api.groq.com/openai/v1"),
		AIModel:              getEnv("AI_MODEL", "mixtral-8x7b-32768"),
		CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "@daily"),
		PriceWarmSchedule:    getEnv("PRICE_WARM_SCHEDULE", "@every 5m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
// A missing GROQ_API_KEY is allowed: client profiles fall back to the offline generator.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.PriceCacheTTL <= 0 {
		return fmt.Errorf("PRICE_CACHE_TTL must be positive, got %s", c.PriceCacheTTL)
	}
	if len(c.YahooHosts) == 0 {
		return fmt.Errorf("YAHOO_HOSTS must list at least one host")
	}
	if c.YahooRateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive, got %d", c.YahooRateLimit)
	}
	if strings.TrimSpace(c.HistoryPeriod) == "" {
		return fmt.Errorf("HISTORY_PERIOD must not be empty")
	}
	return nil
}

// HasAIProvider reports whether remote profile generation is configured.
func (c *Config) HasAIProvider() bool {
	return c.GroqAPIKey != ""
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

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

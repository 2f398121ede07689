package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DatabasePath string
	LogLevel     string

	// Polygon.io credentials for the holiday and premarket JSON feeds
	PolygonAPIKey string

	// Headless browser settings
	BrowserHeadless bool
	NavigateTimeout int // seconds
	SelectorTimeout int // seconds

	// Cron cadences (6-field specs, seconds first)
	EconomicSchedule         string
	SentimentSchedule        string
	EarningsSchedule         string
	NextWeekEarningsSchedule string
	HolidaysSchedule         string
	PremarketSchedule        string
	MaintenanceSchedule      string

	// Maximum movers kept per direction on each fetch
	MaxMovers int

	// Scraped rows older than this are pruned by the maintenance job.
	// Zero disables pruning.
	RetentionDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8000),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/marketdash.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		PolygonAPIKey: getEnv("POLYGON_API_KEY", ""),

		BrowserHeadless: getEnvAsBool("BROWSER_HEADLESS", true),
		NavigateTimeout: getEnvAsInt("NAVIGATE_TIMEOUT_SECONDS", 60),
		SelectorTimeout: getEnvAsInt("SELECTOR_TIMEOUT_SECONDS", 30),

		EconomicSchedule:         getEnv("ECONOMIC_SCHEDULE", "0 35 12 * * *"),
		SentimentSchedule:        getEnv("SENTIMENT_SCHEDULE", "@hourly"),
		EarningsSchedule:         getEnv("EARNINGS_SCHEDULE", "0 0 4 * * *"),
		NextWeekEarningsSchedule: getEnv("NEXT_WEEK_EARNINGS_SCHEDULE", "0 0 12 * * MON"),
		HolidaysSchedule:         getEnv("HOLIDAYS_SCHEDULE", "0 0 18 * * SUN"),
		PremarketSchedule:        getEnv("PREMARKET_SCHEDULE", "0 30 8 * * MON-FRI"),
		MaintenanceSchedule:      getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * *"),

		MaxMovers:     getEnvAsInt("MAX_MOVERS", 20),
		RetentionDays: getEnvAsInt("RETENTION_DAYS", 90),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	// Polygon key is only required by the holiday and premarket jobs; those
	// jobs fail their own runs without it, so startup does not fail here.

	return nil
}

// Helper functions
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

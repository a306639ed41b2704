package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	BotToken string
	Database DatabaseConfig

	// FuzzyThreshold is the minimum 0..100 similarity score at which a
	// name is considered an ambiguous match worth confirming.
	FuzzyThreshold int

	// DefaultCurrency is the fallback for users without wallets.
	DefaultCurrency string

	// RatesURL serves the exchange-rate table, base USD.
	RatesURL string
	// RatesTTL bounds how long a fetched rate table counts as fresh.
	RatesTTL time.Duration

	LocalesDir string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken: os.Getenv("BOT_TOKEN"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "finbot"),
			User:     getEnv("DB_USER", "finbot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),
		RatesURL:        getEnv("RATES_URL", "https://api.exchangerate-api.com/v4/latest/USD"),
		LocalesDir:      getEnv("LOCALES_DIR", "locales"),
	}

	threshold, err := getEnvInt("FUZZY_THRESHOLD", 75)
	if err != nil {
		return nil, err
	}
	if threshold < 1 || threshold > 100 {
		return nil, fmt.Errorf("FUZZY_THRESHOLD must be within 1..100, got %d", threshold)
	}
	cfg.FuzzyThreshold = threshold

	ttlHours, err := getEnvInt("RATES_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.RatesTTL = time.Duration(ttlHours) * time.Hour

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"libranet/internal/money"
)

// Config holds the process configuration, read from environment variables.
type Config struct {
	ServerAddr         string
	GinMode            string
	DailyFineRate      money.Money
	EnforceBorrowLimit bool
	DefaultBorrowLimit int
	RateLimitRPS       float64
	RateLimitBurst     int
	SeedCatalog        bool
	Location           *time.Location
}

// Load reads configuration from environment variables, applying defaults for unset keys.
func Load() (*Config, error) {
	rate, err := money.ParseMajor(getEnv("DAILY_FINE_RATE", "10.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_FINE_RATE: %w", err)
	}
	if rate.Minor() < 0 {
		return nil, fmt.Errorf("invalid DAILY_FINE_RATE: must not be negative")
	}

	enforce, err := strconv.ParseBool(getEnv("ENFORCE_BORROW_LIMIT", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENFORCE_BORROW_LIMIT: %w", err)
	}

	defaultLimit, err := strconv.Atoi(getEnv("DEFAULT_BORROW_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_BORROW_LIMIT: %w", err)
	}
	if defaultLimit <= 0 {
		return nil, fmt.Errorf("invalid DEFAULT_BORROW_LIMIT: must be positive")
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	seed, err := strconv.ParseBool(getEnv("SEED_CATALOG", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_CATALOG: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return &Config{
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		GinMode:            getEnv("GIN_MODE", "release"),
		DailyFineRate:      rate,
		EnforceBorrowLimit: enforce,
		DefaultBorrowLimit: defaultLimit,
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		SeedCatalog:        seed,
		Location:           loc,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

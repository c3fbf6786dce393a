package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string

	// DBDSN is optional; without it booking requests and attachment
	// metadata are kept in memory.
	DBDSN       string
	StoragePath string

	SessionSecret   string
	SessionTTL      time.Duration
	SessionTokenTTL time.Duration
	RateLimitPerMin int
	BcryptCost      int

	PaymentDelay         time.Duration
	ConfirmDelay         time.Duration
	MessageDeliveryDelay time.Duration
	ThreadLoadDelay      time.Duration
	LoadMoreDelay        time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}
	var err error

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING

	// Allowed CORS origins in production, comma separated
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required in production")
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.DBDSN = os.Getenv("DB_DSN")
	cfg.StoragePath = getEnv("STORAGE_PATH", "./data")

	// Session secret is required for signing session tokens
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"SESSION_TTL", 30 * time.Minute, &cfg.SessionTTL},
		{"SESSION_TOKEN_TTL", 24 * time.Hour, &cfg.SessionTokenTTL},
		{"PAYMENT_DELAY", 3 * time.Second, &cfg.PaymentDelay},
		{"CONFIRM_DELAY", 2 * time.Second, &cfg.ConfirmDelay},
		{"MESSAGE_DELIVERY_DELAY", time.Second, &cfg.MessageDeliveryDelay},
		{"THREAD_LOAD_DELAY", 500 * time.Millisecond, &cfg.ThreadLoadDelay},
		{"LOAD_MORE_DELAY", time.Second, &cfg.LoadMoreDelay},
	}
	for _, d := range durations {
		if *d.dst, err = getEnvAsDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.RateLimitPerMin, err = getEnvAsInt("RATE_LIMIT_PER_MIN", 600)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MIN: %w", err)
	}

	// Bcrypt cost for card fingerprints (default: 10)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses a time.Duration (e.g. "15m", "500ms").
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("env %s must not be negative", key)
	}
	return val, nil
}

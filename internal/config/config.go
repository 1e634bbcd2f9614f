package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "Ethergate"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultIdemTTL       = 24 * time.Hour
	defaultNetwork       = "mainnet"
	defaultFiatCurrency  = "USD"
)

// Config captures application runtime configuration loaded from
// environment variables. It is passed by value into each component's
// constructor; business logic never reads the environment directly.
type Config struct {
	AppName             string
	AppEnv              string
	Port                string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	ShutdownPeriod      time.Duration
	IdempotencyTTL      time.Duration
	InfuraProjectID     string
	InfuraNetwork       string
	EtherscanAPIKey     string
	TelegramAPIKey      string
	DefaultFiatCurrency string
}

// Load reads configuration values from the environment and populates a
// Config instance. Outside development the database, redis and Infura
// settings are mandatory.
func Load() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		ShutdownPeriod:      defaultShutdownDelay,
		IdempotencyTTL:      defaultIdemTTL,
		InfuraProjectID:     os.Getenv("INFURA_PROJECT_ID"),
		InfuraNetwork:       getEnv("INFURA_NETWORK", defaultNetwork),
		EtherscanAPIKey:     os.Getenv("ETHERSCAN_API_KEY"),
		TelegramAPIKey:      os.Getenv("TELEGRAM_API_KEY"),
		DefaultFiatCurrency: strings.ToUpper(getEnv("DEFAULT_FIAT_CURRENCY", defaultFiatCurrency)),
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		cfg.IdempotencyTTL = d
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
		if cfg.InfuraProjectID == "" {
			return Config{}, fmt.Errorf("INFURA_PROJECT_ID must be set")
		}
		if cfg.TelegramAPIKey == "" {
			return Config{}, fmt.Errorf("TELEGRAM_API_KEY must be set")
		}
	}

	return cfg, nil
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

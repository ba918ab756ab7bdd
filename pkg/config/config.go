package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	HTTPAddr string

	// Storage
	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	// Messaging
	RabbitMQURL string

	// Identity
	JWTSecret string

	// Checkout
	HandoffPhone          string
	CheckoutSuccessLinger time.Duration
	CheckoutSessionTTL    time.Duration

	// Resilience and metrics
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration
	MetricsEnabled          bool
}

var defaults = map[string]any{
	"app_env":                   "development",
	"log_level":                 "info",
	"http_addr":                 ":8080",
	"database_url":              "",
	"sqlite_path":               "",
	"redis_url":                 "",
	"rabbitmq_url":              "",
	"jwt_secret":                "",
	"handoff_phone":             "",
	"checkout_success_linger":   "5s",
	"checkout_session_ttl":      "2h",
	"breaker_failure_threshold": 5,
	"breaker_timeout":           "30s",
	"metrics_enabled":           true,
}

// devJWTSecret signs tokens in development when JWT_SECRET is unset.
const devJWTSecret = "coach-portal-dev-secret"

// Load reads configuration from, in increasing priority: built-in defaults, the
// optional YAML file at path, a .env file in the working directory, and the environment.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		AppEnv:                  v.GetString("app_env"),
		LogLevel:                v.GetString("log_level"),
		HTTPAddr:                v.GetString("http_addr"),
		DatabaseURL:             v.GetString("database_url"),
		SQLitePath:              v.GetString("sqlite_path"),
		RedisURL:                v.GetString("redis_url"),
		RabbitMQURL:             v.GetString("rabbitmq_url"),
		JWTSecret:               v.GetString("jwt_secret"),
		HandoffPhone:            v.GetString("handoff_phone"),
		CheckoutSuccessLinger:   v.GetDuration("checkout_success_linger"),
		CheckoutSessionTTL:      v.GetDuration("checkout_session_ttl"),
		BreakerFailureThreshold: v.GetUint32("breaker_failure_threshold"),
		BreakerTimeout:          v.GetDuration("breaker_timeout"),
		MetricsEnabled:          v.GetBool("metrics_enabled"),
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.CheckoutSuccessLinger < 0 {
		errs = append(errs, errors.New("CHECKOUT_SUCCESS_LINGER must not be negative"))
	}
	if c.CheckoutSessionTTL <= c.CheckoutSuccessLinger {
		errs = append(errs, errors.New("CHECKOUT_SESSION_TTL must exceed CHECKOUT_SUCCESS_LINGER"))
	}
	if c.BreakerFailureThreshold == 0 {
		errs = append(errs, errors.New("BREAKER_FAILURE_THRESHOLD must be positive"))
	}
	if c.IsProduction() && c.HandoffPhone == "" {
		errs = append(errs, errors.New("HANDOFF_PHONE is required in production"))
	}
	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesSQLite reports whether the relational store is the embedded SQLite database.
func (c *Config) UsesSQLite() bool {
	if c.DatabaseURL == "" {
		return true
	}
	return strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasPrefix(c.DatabaseURL, "file:")
}

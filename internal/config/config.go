package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
// Defaults are overridden by an optional TOML file (CONFIG_FILE), which is
// in turn overridden by environment variables.
type Config struct {
	// Server
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // json | console

	// Dashboard data source
	DataSource      string        `toml:"data_source"` // mock | http
	DashboardAPIURL string        `toml:"dashboard_api_url"`
	MockDelay       time.Duration `toml:"mock_delay"`
	RefreshSchedule string        `toml:"refresh_schedule"` // cron spec, empty disables

	// HTTP client
	HTTPTimeout time.Duration `toml:"http_timeout"`

	// Resilience
	MaxRetries     int           `toml:"max_retries"`
	InitialBackoff time.Duration `toml:"initial_backoff"`
	MaxConcurrency int           `toml:"max_concurrency"`

	// Profile
	ProfileStore string        `toml:"profile_store"` // memory | sqlite
	SQLitePath   string        `toml:"sqlite_path"`
	ProfileDelay time.Duration `toml:"profile_delay"`

	// Transfers
	TransferDelay      time.Duration `toml:"transfer_delay"`
	TransferSigningKey string        `toml:"transfer_signing_key"`
	ConfirmationTTL    time.Duration `toml:"confirmation_ttl"`

	// Events
	AMQPURL        string `toml:"amqp_url"` // empty disables publishing
	AMQPExchange   string `toml:"amqp_exchange"`
	AMQPRoutingKey string `toml:"amqp_routing_key"`

	// Observability
	OTLPEndpoint string `toml:"otlp_endpoint"` // empty disables tracing
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:      8080,
		LogLevel:  "info",
		LogFormat: "json",

		DataSource:      "mock",
		DashboardAPIURL: "http://localhost:8081",
		MockDelay:       800 * time.Millisecond,

		HTTPTimeout: 10 * time.Second,

		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxConcurrency: 50,

		ProfileStore: "memory",
		SQLitePath:   "data/finboard.db",
		ProfileDelay: 800 * time.Millisecond,

		TransferDelay:      1500 * time.Millisecond,
		TransferSigningKey: "finboard-default-dev-secret-change-me",
		ConfirmationTTL:    5 * time.Minute,

		AMQPExchange:   "finboard",
		AMQPRoutingKey: "transfers.completed",
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.DataSource = getEnv("DASHBOARD_SOURCE", cfg.DataSource)
	cfg.DashboardAPIURL = getEnv("DASHBOARD_API_URL", cfg.DashboardAPIURL)
	cfg.MockDelay = getEnvDuration("MOCK_DELAY", cfg.MockDelay)
	cfg.RefreshSchedule = getEnv("DASHBOARD_REFRESH_SCHEDULE", cfg.RefreshSchedule)

	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)

	cfg.MaxRetries = getEnvInt("MAX_RETRIES", cfg.MaxRetries)
	cfg.InitialBackoff = getEnvDuration("INITIAL_BACKOFF", cfg.InitialBackoff)
	cfg.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", cfg.MaxConcurrency)

	cfg.ProfileStore = getEnv("PROFILE_STORE", cfg.ProfileStore)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.ProfileDelay = getEnvDuration("PROFILE_DELAY", cfg.ProfileDelay)

	cfg.TransferDelay = getEnvDuration("TRANSFER_DELAY", cfg.TransferDelay)
	cfg.TransferSigningKey = getEnv("TRANSFER_SIGNING_KEY", cfg.TransferSigningKey)
	cfg.ConfirmationTTL = getEnvDuration("CONFIRMATION_TTL", cfg.ConfirmationTTL)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPRoutingKey = getEnv("AMQP_ROUTING_KEY", cfg.AMQPRoutingKey)

	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.DataSource {
	case "mock", "http":
	default:
		return fmt.Errorf("invalid dashboard source %q (want mock or http)", c.DataSource)
	}
	switch c.ProfileStore {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid profile store %q (want memory or sqlite)", c.ProfileStore)
	}
	if c.TransferSigningKey == "" {
		return fmt.Errorf("transfer signing key must not be empty")
	}
	if c.ConfirmationTTL <= 0 {
		return fmt.Errorf("confirmation TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

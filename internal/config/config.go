// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HS256 signing secret for access and refresh tokens.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim (e.g. "ecommerce-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "ecommerce-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// LockoutThreshold is the number of consecutive failed logins that locks an
	// account; default 5.
	LockoutThreshold int `mapstructure:"LOCKOUT_THRESHOLD"`
	// DefaultMinStockLevel is the minimum stock level assigned to products that
	// do not specify one; default 10.
	DefaultMinStockLevel int `mapstructure:"DEFAULT_MIN_STOCK_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Events (optional). When Kafka brokers are set, domain events are emitted to Kafka.
	// EventsKafkaBrokers is a comma-separated list of broker addresses (e.g. "localhost:9092").
	EventsKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for domain events (default ecommerce-events).
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// OTLPEndpoint enables OpenTelemetry export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required
// fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "ecommerce-auth")
	v.SetDefault("JWT_AUDIENCE", "ecommerce-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOCKOUT_THRESHOLD", 5)
	v.SetDefault("DEFAULT_MIN_STOCK_LEVEL", 10)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "ecommerce-events")
	v.SetDefault("OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.LockoutThreshold <= 0 {
		return nil, errors.New("config: LOCKOUT_THRESHOLD must be positive")
	}
	if cfg.DefaultMinStockLevel < 0 {
		return nil, errors.New("config: DEFAULT_MIN_STOCK_LEVEL must not be negative")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// EventsKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) EventsKafkaBrokersList() []string {
	if c == nil || c.EventsKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.EventsKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

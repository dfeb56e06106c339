package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Events     EventsConfig
	Kafka      KafkaConfig
	Moderation ModerationConfig
	Admin      AdminConfig
	Telemetry  TelemetryConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

// RedisConfig selects the server by REDIS_URL, or by REDIS_ADDR and REDIS_DB.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED,   default=true"`
	URL      string        `env:"REDIS_URL"`
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	DB       int           `env:"REDIS_DB,        default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	DedupTTL time.Duration `env:"REDIS_DEDUP_TTL, default=24h"`
}

type EventsConfig struct {
	Workers      int           `env:"EVENT_WORKERS,       default=8"`
	MaxAttempts  int           `env:"EVENT_MAX_ATTEMPTS,  default=5"`
	RetryBackoff time.Duration `env:"EVENT_RETRY_BACKOFF, default=100ms"`
}

// KafkaConfig enables integration-event forwarding when Brokers is set.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=marketplace.integration-events"`
}

// ModerationConfig picks how pending drafts are reviewed. By default the
// keyword reviewer decides, approving everything when no terms are set. In
// manual mode drafts wait for a staff user with listing moderation rights.
type ModerationConfig struct {
	Manual       bool     `env:"MODERATION_MANUAL, default=false"`
	BlockedTerms []string `env:"MODERATION_BLOCKED_TERMS"`
}

// AdminConfig seeds one staff account at start-up when Email is set.
type AdminConfig struct {
	Email    string `env:"ADMIN_BOOTSTRAP_EMAIL"`
	Name     string `env:"ADMIN_BOOTSTRAP_NAME, default=Administrator"`
	Password string `env:"ADMIN_BOOTSTRAP_PASSWORD"`
}

type TelemetryConfig struct {
	Endpoint    string  `env:"OTEL_ENDPOINT"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO, default=1"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Process reads and validates configuration from l.
func Process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StorageDriver)
	}
	if c.JWTSecret == "" && c.Env != "development" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be between 0 and 1, got %v", c.Telemetry.SampleRatio)
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_BOOTSTRAP_PASSWORD is required with ADMIN_BOOTSTRAP_EMAIL")
	}
	return nil
}

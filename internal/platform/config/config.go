package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures process-level configuration loaded from environment
// variables. It covers wiring concerns only; the registration policy
// constants live in Policy and are not environment-tunable.
type Config struct {
	Addr            string        `env:"CATTEL_ADDR" envDefault:":8080"`
	Debug           bool          `env:"CATTEL_DEBUG" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"CATTEL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	JWTSigningKey   string        `env:"CATTEL_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	SessionTTL      time.Duration `env:"CATTEL_SESSION_TTL" envDefault:"24h"`

	Postgres PostgresConfig `envPrefix:"CATTEL_POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"CATTEL_REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"CATTEL_KAFKA_"`
}

// PostgresConfig holds the database connection parameters. An empty DSN
// selects the in-memory stores.
type PostgresConfig struct {
	DSN string `env:"DSN"`
}

// RedisConfig holds Redis connection parameters. An empty URL disables
// the Redis-backed queue index and token revocation store.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig holds the audit event stream parameters. Empty seeds
// disable Kafka publishing; audit events still persist to the store.
type KafkaConfig struct {
	Seeds      []string `env:"SEEDS" envSeparator:","`
	AuditTopic string   `env:"AUDIT_TOPIC" envDefault:"cattel.audit.events"`
}

// FromEnv builds the configuration from environment variables so main
// stays lean.
func FromEnv() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

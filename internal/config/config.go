// Package config loads service configuration from the environment.
//
// Every knob is an environment variable with a default suitable for the
// docker-compose network, except the Postgres credentials: those have no
// default, and their absence surfaces as a connection failure on first
// acquire rather than a startup error.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/joeshaw/envdecode"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Mail     MailConfig
	Logging  LoggingConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `env:"SERVER_HOST,default=0.0.0.0"`
	Port int    `env:"SERVER_PORT,default=8000"`
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// PostgresConfig configures the database connection.
type PostgresConfig struct {
	DB       string `env:"POSTGRES_DB"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Host     string `env:"POSTGRES_HOST,default=postgres"`
	Port     int    `env:"POSTGRES_PORT,default=5432"`
}

// DSN returns a lib/pq keyword DSN. sslmode is disabled: the database is
// reached over the compose network, and lib/pq's default of "require" would
// refuse the plain-TCP listener.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.Host, c.Port, c.DB, c.User, c.Password)
}

// RedisConfig configures the key-value store connection.
type RedisConfig struct {
	Host string `env:"REDIS_HOST,default=redis"`
	Port int    `env:"REDIS_PORT,default=6379"`
}

// Addr returns the host:port of the Redis server.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// KafkaConfig configures the broker connection. Only the internal listener
// port is configurable; the broker host is pinned to the compose service
// name.
type KafkaConfig struct {
	Port int `env:"KAFKA_INTERNAL_PORT,default=9092"`
}

// Broker returns the bootstrap address of the Kafka broker.
func (c KafkaConfig) Broker() string {
	return net.JoinHostPort("kafka", strconv.Itoa(c.Port))
}

// MailConfig configures the outbound SMTP relay.
type MailConfig struct {
	Host string `env:"MAILHOG_HOST,default=mailhog"`
	Port int    `env:"MAILHOG_PORT,default=1025"`
}

// LoggingConfig configures the logger and the remote log sinks.
type LoggingConfig struct {
	Level   string `env:"LOG_LEVEL,default=info"`
	Format  string `env:"LOG_FORMAT,default=json"`
	SeqURL  string `env:"SEQ_URL,default=http://seq:5341"`
	LokiURL string `env:"LOKI_URL,default=http://loki:3100/loki/api/v1/push"`
}

// Load decodes the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

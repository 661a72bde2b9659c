package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SERVER_HOST", "SERVER_PORT",
		"POSTGRES_DB", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_HOST", "POSTGRES_PORT",
		"REDIS_HOST", "REDIS_PORT",
		"KAFKA_INTERNAL_PORT",
		"MAILHOG_HOST", "MAILHOG_PORT",
		"SEQ_URL", "LOKI_URL", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8000", cfg.Server.ListenAddr())
	require.Equal(t, "redis:6379", cfg.Redis.Addr())
	require.Equal(t, "kafka:9092", cfg.Kafka.Broker())
	require.Equal(t, "mailhog", cfg.Mail.Host)
	require.Equal(t, 1025, cfg.Mail.Port)
	require.Equal(t, "http://seq:5341", cfg.Logging.SeqURL)
	require.Equal(t, "http://loki:3100/loki/api/v1/push", cfg.Logging.LokiURL)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)

	// Credentials have no defaults; a missing value is a connection
	// failure later, not a startup error.
	require.Empty(t, cfg.Postgres.DB)
	require.Empty(t, cfg.Postgres.User)
	require.Empty(t, cfg.Postgres.Password)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_DB", "app")
	t.Setenv("POSTGRES_USER", "svc")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("KAFKA_INTERNAL_PORT", "9094")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "host=db.internal port=5433 dbname=app user=svc password=secret sslmode=disable", cfg.Postgres.DSN())
	require.Equal(t, "cache:6380", cfg.Redis.Addr())
	require.Equal(t, "kafka:9094", cfg.Kafka.Broker())
	require.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddr())
}

func TestLoadRejectsUnparseablePort(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

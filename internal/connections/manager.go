// Package connections owns the lifecycle of the three external dependency
// handles: the PostgreSQL database, the Redis key-value store, and the Kafka
// producer.
//
// Handles are process-wide singletons created lazily on first acquire (or
// eagerly via WarmUp). Construction retries transient failures with a fixed
// exponential backoff; once built, a handle is reused for the remainder of
// the process and torn down exactly once by CloseAll. Failures while using a
// handle are the caller's to surface, never retried here.
package connections

import (
	"context"
	"database/sql"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redis/redis/v8"

	"github.com/infrademo/infrademo/internal/app/metrics"
	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/pkg/logger"
)

// Manager hands out the shared dependency handles. All methods are safe for
// concurrent use; creation is serialized per kind so concurrent first
// requests cannot open duplicate connections.
type Manager struct {
	cfg    *config.Config
	log    *logger.Logger
	policy RetryPolicy

	pgMu sync.Mutex
	pg   *sql.DB

	redisMu sync.Mutex
	redis   *redis.Client

	kafkaMu   sync.Mutex
	publisher message.Publisher

	closeOnce sync.Once
}

// NewManager creates a manager with the default retry policy.
func NewManager(cfg *config.Config, log *logger.Logger) *Manager {
	return &Manager{cfg: cfg, log: log, policy: DefaultRetryPolicy}
}

// Postgres returns the shared database handle, creating it on first use.
// An existing handle is returned as-is: the pool reconnects internally and
// is only ever closed by CloseAll.
func (m *Manager) Postgres(ctx context.Context) (*sql.DB, error) {
	m.pgMu.Lock()
	defer m.pgMu.Unlock()
	if m.pg != nil {
		return m.pg, nil
	}

	var db *sql.DB
	err := withRetry(ctx, m.log, m.policy, string(KindPostgres), func() error {
		var err error
		db, err = dialPostgres(ctx, m.cfg.Postgres)
		return err
	})
	metrics.RecordConnection(string(KindPostgres), err == nil)
	if err != nil {
		return nil, &UnavailableError{Kind: KindPostgres, Err: err}
	}

	m.log.Infof("connected to postgres at %s:%d", m.cfg.Postgres.Host, m.cfg.Postgres.Port)
	m.pg = db
	return db, nil
}

// Redis returns the shared key-value store client, creating it on first use.
// Construction probes the server; a constructed client is assumed live for
// the rest of the process.
func (m *Manager) Redis(ctx context.Context) (*redis.Client, error) {
	m.redisMu.Lock()
	defer m.redisMu.Unlock()
	if m.redis != nil {
		return m.redis, nil
	}

	var client *redis.Client
	err := withRetry(ctx, m.log, m.policy, string(KindRedis), func() error {
		var err error
		client, err = dialRedis(ctx, m.cfg.Redis)
		return err
	})
	metrics.RecordConnection(string(KindRedis), err == nil)
	if err != nil {
		return nil, &UnavailableError{Kind: KindRedis, Err: err}
	}

	m.log.Infof("connected to redis at %s", m.cfg.Redis.Addr())
	m.redis = client
	return client, nil
}

// Kafka returns the shared producer, creating it on first use. The sync
// producer exchanges metadata with the broker during construction, so an
// unreachable broker surfaces here and is retried on the same schedule as
// the other kinds.
func (m *Manager) Kafka(ctx context.Context) (message.Publisher, error) {
	m.kafkaMu.Lock()
	defer m.kafkaMu.Unlock()
	if m.publisher != nil {
		return m.publisher, nil
	}

	var publisher message.Publisher
	err := withRetry(ctx, m.log, m.policy, string(KindKafka), func() error {
		var err error
		publisher, err = dialKafka(m.cfg.Kafka, m.log)
		return err
	})
	metrics.RecordConnection(string(KindKafka), err == nil)
	if err != nil {
		return nil, &UnavailableError{Kind: KindKafka, Err: err}
	}

	m.log.Infof("connected to kafka at %s", m.cfg.Kafka.Broker())
	m.publisher = publisher
	return publisher, nil
}

// WarmUp eagerly establishes all three handles at startup. Each failure is
// logged and non-fatal; first real use retries.
func (m *Manager) WarmUp(ctx context.Context) {
	if _, err := m.Postgres(ctx); err != nil {
		m.log.WithError(err).Warn("postgres warm-up failed")
	}
	if _, err := m.Redis(ctx); err != nil {
		m.log.WithError(err).Warn("redis warm-up failed")
	}
	if _, err := m.Kafka(ctx); err != nil {
		m.log.WithError(err).Warn("kafka warm-up failed")
	}
}

// CloseAll tears down the handles in reverse of the warm-up order: flush and
// close the producer, close the Redis client, close the database. Teardown
// is per-handle best-effort and never raises; repeated calls are no-ops.
func (m *Manager) CloseAll() {
	m.closeOnce.Do(func() {
		m.kafkaMu.Lock()
		if m.publisher != nil {
			if err := m.publisher.Close(); err != nil {
				m.log.WithError(err).Warn("failed to flush kafka producer")
			} else {
				m.log.Info("kafka producer flushed and closed")
			}
			m.publisher = nil
		}
		m.kafkaMu.Unlock()

		m.redisMu.Lock()
		if m.redis != nil {
			if err := m.redis.Close(); err != nil {
				m.log.WithError(err).Warn("failed to close redis client")
			} else {
				m.log.Info("redis connection closed")
			}
			m.redis = nil
		}
		m.redisMu.Unlock()

		m.pgMu.Lock()
		if m.pg != nil {
			if err := m.pg.Close(); err != nil {
				m.log.WithError(err).Warn("failed to close database")
			} else {
				m.log.Info("postgres connection closed")
			}
			m.pg = nil
		}
		m.pgMu.Unlock()
	})
}

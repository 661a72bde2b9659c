package connections

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/infrademo/infrademo/internal/config"
)

const pingTimeout = 5 * time.Second

// openPostgres opens the database handle. Overridable in tests.
var openPostgres = func(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

// dialPostgres opens a database handle and verifies it with a bounded ping.
// Statements run outside explicit transactions, so the handle is effectively
// in auto-commit mode; nothing in this service demarcates transactions.
func dialPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := openPostgres(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Package ledger records an audit trail of every processing request in
// Postgres: whether it hit cache, how long the transform took, and
// whether it failed. Writes are best-effort — a ledger outage must never
// take down the gateway's request path.
package ledger

import (
	_ "embed"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrate.sql
var migrateSQL string

// CacheOutcome labels how a request's fingerprint was resolved.
type CacheOutcome string

const (
	CacheHit    CacheOutcome = "hit"
	CacheMiss   CacheOutcome = "miss"
	CacheBypass CacheOutcome = "bypass"
)

// Entry is one row of the processing ledger.
type Entry struct {
	Fingerprint  string
	ObjectKey    string
	CacheOutcome CacheOutcome
	ByteSize     int64
	Duration     time.Duration
	Failed       bool
	Err          error
}

// Ledger persists Entry records to Postgres.
type Ledger struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn and pings it.
func Connect(ctx context.Context, dsn string) (*Ledger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Ledger{pool: pool}, nil
}

// Migrate applies the schema idempotently. Safe to call on every startup.
func (l *Ledger) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, migrateSQL)
	return err
}

// Close shuts down the connection pool.
func (l *Ledger) Close() {
	l.pool.Close()
}

// Record inserts e. Errors are logged, not returned — callers should not
// let a ledger failure change a request's outcome.
func (l *Ledger) Record(ctx context.Context, e Entry) {
	var errMsg *string
	if e.Err != nil {
		msg := e.Err.Error()
		errMsg = &msg
	}
	// Generated client-side rather than via a Postgres UUID extension, so
	// the schema has no extension dependency.
	id := uuid.New()
	_, err := l.pool.Exec(ctx, `
INSERT INTO processing_jobs (id, fingerprint, object_key, cache_outcome, byte_size, duration_ms, failed, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.Fingerprint, e.ObjectKey, string(e.CacheOutcome), e.ByteSize, e.Duration.Milliseconds(), e.Failed, errMsg)
	if err != nil {
		slog.Warn("ledger: record failed", "fingerprint", e.Fingerprint, "err", err)
	}
}

package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so every store runs
// unchanged inside or outside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn is the statement runner shared by the stores of one view.
type conn struct {
	q       querier
	timeout time.Duration
}

// withTimeout bounds a single statement by the configured query timeout.
func (c conn) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// DB is the PostgreSQL storage engine.
type DB struct {
	pool *pgxpool.Pool
	cfg  *Config

	stopCh chan struct{}
	wg     sync.WaitGroup
}

var _ store.Store = (*DB)(nil)

// New creates a PostgreSQL-backed engine.
// It establishes a connection pool, optionally runs migrations and starts pool monitoring.
func New(ctx context.Context, cfg *Config) (*DB, error) {
	// Apply defaults and validate config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := NewPool(ctx, &cfg.PoolConfig)
	if err != nil {
		return nil, err
	}

	// Run migrations only if explicitly enabled
	if cfg.AutoMigrate {
		applied, err := Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Strs("applied", applied).Msg("Database migrations completed")
	}

	db := &DB{
		pool:   pool,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}

	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		db.monitorConnectionPool()
	}()

	return db, nil
}

// Stores returns views that run each statement directly on the pool.
func (db *DB) Stores() store.Stores {
	return db.views(db.pool)
}

func (db *DB) views(q querier) store.Stores {
	c := conn{q: q, timeout: db.cfg.queryTimeout()}
	return store.Stores{
		Principals:    &PrincipalStore{conn: c},
		Organizations: &OrganizationStore{conn: c},
		Inspections:   &InspectionStore{conn: c},
	}
}

// Do runs fn in one repeatable-read transaction. The whole unit is retried with
// exponential backoff when PostgreSQL reports a serialization failure or deadlock.
func (db *DB) Do(ctx context.Context, fn func(store.Stores) error) error {
	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		err := pgx.BeginTxFunc(ctx, db.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
			return fn(db.views(tx))
		})
		if err == nil {
			return struct{}{}, nil
		}
		if isRetryable(err) {
			log.Debug().Int("attempt", attempt).Err(err).Msg("Retrying unit of work after conflict")
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(mapPostgresError(err))
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(db.cfg.MaxTxAttempts),
	)
	if err != nil && isRetryable(err) {
		return fmt.Errorf("%w: unit of work gave up after %d attempts: %w", store.ErrUnavailable, attempt, err)
	}

	return err
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return nil
}

// Close stops background tasks and closes the pool.
func (db *DB) Close() {
	log.Info().Msg("Stopping PostgreSQL store")

	close(db.stopCh)
	db.wg.Wait()
	db.pool.Close()

	log.Info().Msg("PostgreSQL store stopped")
}

// monitorConnectionPool logs connection pool statistics periodically.
func (db *DB) monitorConnectionPool() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := db.pool.Stat()
			log.Debug().
				Int32("total_conns", stats.TotalConns()).
				Int32("idle_conns", stats.IdleConns()).
				Int32("acquired_conns", stats.AcquiredConns()).
				Int64("acquire_count", stats.AcquireCount()).
				Int64("acquire_duration_ns", stats.AcquireDuration().Nanoseconds()).
				Msg("Connection pool stats")
		case <-db.stopCh:
			return
		}
	}
}

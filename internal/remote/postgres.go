package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/mlmathr/internal/progress"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	// DSN is a connection URL or key/value connection string.
	DSN string

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32

	// ConnectTimeout bounds the initial connect and ping.
	ConnectTimeout time.Duration
}

const createProgressTable = `
CREATE TABLE IF NOT EXISTS progress (
	user_id    TEXT PRIMARY KEY,
	xp         INTEGER NOT NULL DEFAULT 0,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres is a Store backed by a PostgreSQL progress table with one row
// per user. The snapshot is stored in its versioned JSON encoding; xp is
// duplicated into its own column for reporting queries.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection, and ensures the
// progress table exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createProgressTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create progress table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Get(ctx context.Context, userID string) (progress.Snapshot, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM progress WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return progress.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("postgres: get progress: %w", err)
	}
	return progress.Decode(raw)
}

func (p *Postgres) Upsert(ctx context.Context, userID string, snap progress.Snapshot) error {
	raw, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO progress (user_id, xp, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			xp = EXCLUDED.xp,
			data = EXCLUDED.data,
			updated_at = NOW()`,
		userID, snap.XP, raw,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert progress: %w", err)
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, userID string, snap progress.Snapshot) error {
	raw, err := progress.Encode(snap)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO progress (user_id, xp, data) VALUES ($1, $2, $3)`,
		userID, snap.XP, raw,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("postgres: insert progress: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

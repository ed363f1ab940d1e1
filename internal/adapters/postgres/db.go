package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/k-amith1610/geocity-sub000/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// EnsureSchema creates the navigation tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS nav_sessions (
			id            UUID PRIMARY KEY,
			origin_lat    DOUBLE PRECISION NOT NULL,
			origin_lon    DOUBLE PRECISION NOT NULL,
			dest_lat      DOUBLE PRECISION NOT NULL,
			dest_lon      DOUBLE PRECISION NOT NULL,
			travel_mode   TEXT NOT NULL,
			phase         TEXT NOT NULL,
			route_distance_m DOUBLE PRECISION NOT NULL DEFAULT 0,
			started_at    TIMESTAMPTZ NOT NULL,
			ended_at      TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS nav_trace_points (
			session_id    UUID NOT NULL REFERENCES nav_sessions(id) ON DELETE CASCADE,
			time          TIMESTAMPTZ NOT NULL,
			lat           DOUBLE PRECISION NOT NULL,
			lon           DOUBLE PRECISION NOT NULL,
			heading_deg   DOUBLE PRECISION NOT NULL,
			progress_pct  DOUBLE PRECISION NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_trace_session_time
			ON nav_trace_points (session_id, time);
	`)
	return err
}

// StartPoolMetrics feeds pool statistics into Prometheus until ctx ends.
func (db *DB) StartPoolMetrics(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

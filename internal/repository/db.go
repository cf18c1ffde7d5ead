package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xmasshowdown/showdown-server-go/internal/config"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB opens a connection pool and verifies connectivity.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected", zap.Int32("max_conns", poolCfg.MaxConns))
	return &DB{pool: pool, logger: logger}, nil
}

// Pool exposes the underlying pool to repositories.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dtroode/admin-session/database"
)

// DBTX is the subset of *sql.DB used by repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connection owns the pgx pool and a database/sql handle on top of it.
type Connection struct {
	*sql.DB
	pool *pgxpool.Pool
}

func NewConnection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Connection{
		DB:   db,
		pool: pool,
	}, nil
}

func (s *Connection) Close() error {
	var err error
	if s.DB != nil {
		err = s.DB.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

func (s *Connection) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return s.pool.Ping(ctx)
}

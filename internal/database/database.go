// Package database opens the shared connection pool every component uses.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"db-crud/internal/dialect"
	"db-crud/internal/schema"

	"go.uber.org/zap"
)

type Config struct {
	Driver          string
	DSN             string
	Schema          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Handle is the process-wide pooled connection plus the SQL dialect and the
// resolved schema name. It is created once at startup and passed explicitly.
type Handle struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Schema  string
}

// Open creates the pool, verifies the database is reachable and resolves the
// schema to reflect.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Handle, error) {
	d, err := dialect.GetDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", schema.ErrConnection, err)
	}

	schemaName := cfg.Schema
	if schemaName == "" && cfg.Driver == "mysql" {
		var current sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to get database name: %w", err)
		}
		schemaName = current.String
		if schemaName == "" {
			db.Close()
			return nil, fmt.Errorf("no database selected in DSN")
		}
	}
	schemaName = d.GetSchemaName(schemaName)

	logger.Info("connected to database",
		zap.String("driver", cfg.Driver),
		zap.String("schema", schemaName))

	return &Handle{DB: db, Dialect: d, Schema: schemaName}, nil
}

// Close releases the pool.
func (h *Handle) Close() error {
	return h.DB.Close()
}

// LoadCatalog reflects the handle's schema.
func (h *Handle) LoadCatalog(ctx context.Context) (*schema.Catalog, error) {
	return schema.Load(ctx, h.DB, h.Dialect, h.Schema)
}

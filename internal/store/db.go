// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides database access: connection setup for the sqlite and
// mysql drivers, embedded goose migrations, and hand-written query methods.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for database/sql
	_ "modernc.org/sqlite"             // SQLite driver for database/sql
)

//go:embed migrations/*.sql
var migrations embed.FS

// DBTX is the minimal database interface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries instance over the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// DBConfig holds database connection pool options.
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns sensible pool defaults.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// NewDB opens a database connection for the configured driver and verifies it.
// driver is "sqlite" or "mysql"; dsn is a file path for sqlite or a
// go-sql-driver DSN for mysql.
func NewDB(driver, dsn string) (*sql.DB, error) {
	return NewDBWithConfig(driver, dsn, DefaultDBConfig())
}

// NewDBWithConfig opens a database connection with custom pool configuration.
func NewDBWithConfig(driver, dsn string, cfg DBConfig) (*sql.DB, error) {
	switch driver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	if driver == "mysql" {
		// parseTime=true is required so DATETIME columns scan into time.Time
		dsn = ensureMySQLParseTime(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if driver == "sqlite" {
		// Configure SQLite for better performance and concurrency
		pragmas := []string{
			"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
			"PRAGMA busy_timeout=5000",  // Wait 5s when database is locked
			"PRAGMA synchronous=NORMAL", // Good balance of safety and speed
			"PRAGMA cache_size=-64000",  // 64MB cache
			"PRAGMA foreign_keys=ON",    // Enforce foreign key constraints
			"PRAGMA temp_store=MEMORY",  // Store temp tables in memory
		}

		for _, pragma := range pragmas {
			if _, err := db.Exec(pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// ensureMySQLParseTime appends parseTime=true to a mysql DSN when absent.
func ensureMySQLParseTime(dsn string) string {
	for i := len(dsn) - 1; i >= 0; i-- {
		if dsn[i] == '?' {
			return dsn + "&parseTime=true"
		}
		if dsn[i] == '/' {
			break
		}
	}
	return dsn + "?parseTime=true"
}

// Migrate runs all pending migrations on the sqlite store. The mysql schema
// is managed externally (DBA-owned), so migrations are skipped for it.
func Migrate(db *sql.DB, driver string) error {
	if driver == "mysql" {
		slog.Info("mysql schema is managed externally, skipping embedded migrations")
		return nil
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/studyplanner/internal/config"
)

// Open establishes a connection to the configured database and makes sure the
// schema exists.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite3" {
		if err := ensureDataDir(cfg.DSN); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}

		// SQLite doesn't support multiple writers. A single connection also
		// keeps in-memory databases alive for the lifetime of the pool.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ensureDataDir creates the directory holding a file backed SQLite database
func ensureDataDir(dsn string) error {
	if dsn == "" || strings.Contains(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// isSQLite reports whether db talks to SQLite
func isSQLite(db *sqlx.DB) bool {
	return db.DriverName() == "sqlite3"
}

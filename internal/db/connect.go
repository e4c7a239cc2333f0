package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const defaultDBName = "sozblock.db"

// Connect opens a sqlite connection and makes sure the schema exists.
// Tests use WithTesting or WithInMemory to stay off the filesystem.
func Connect(opts ...Option) (*sql.DB, error) {
	options := &dbOptions{path: defaultDBName}
	for _, opt := range opts {
		opt(options)
	}

	conn, err := sql.Open("sqlite", options.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// modernc's driver is not safe for concurrent writers on one connection.
	conn.SetMaxOpenConns(1)

	if !options.isReadOnly {
		if err := ensureSchema(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to initialize database schema: %w", err)
		}
	}

	return conn, nil
}

func ensureSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS block_runs (
			id TEXT PRIMARY KEY,
			entry_id TEXT NOT NULL,
			title TEXT,
			action TEXT NOT NULL,
			status TEXT NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_block_runs_entry ON block_runs (entry_id);
		CREATE INDEX IF NOT EXISTS idx_block_runs_started ON block_runs (started_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables and indexes: %w", err)
	}
	return nil
}

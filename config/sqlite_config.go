package config

import (
	"context"
	"database/sql"
	"path/filepath"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteDSN returns the modernc.org/sqlite DSN for the database file at path.
func SQLiteDSN(path string) string {
	return filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// OpenSQLite opens the database file at path, creating it if needed.
// SQLite serializes writers, so the pool is limited to one connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

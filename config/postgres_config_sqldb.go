package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// OpenPostgresSQLDB opens and pings a *sql.DB on dsn using lib/pq.
func OpenPostgresSQLDB(ctx context.Context, dsn string, maxConnections int32) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	configurePool(db, maxConnections)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func configurePool(db *sql.DB, maxConnections int32) {
	const defaultMaxIdleConnections = 2
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db.SetMaxOpenConns(int(maxConnections))
	db.SetMaxIdleConns(min(defaultMaxIdleConnections, int(maxConnections)))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

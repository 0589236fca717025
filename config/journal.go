package config

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/timed-access-loans/journal/sqlengine"
)

// OpenJournal connects to the database selected by cfg and returns a Journal with
// its schema in place. The returned close function releases the connections.
func OpenJournal(ctx context.Context, cfg Config, options ...sqlengine.Option) (*sqlengine.Journal, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	options = append([]sqlengine.Option{
		sqlengine.WithEventsTableName(cfg.EventsTable),
		sqlengine.WithSnapshotsTableName(cfg.SnapshotsTable),
	}, options...)

	j, closeFn, err := openJournal(ctx, cfg, options)
	if err != nil {
		return nil, nil, err
	}

	if err := j.CreateSchema(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}

	return j, closeFn, nil
}

func openJournal(ctx context.Context, cfg Config, options []sqlengine.Option) (*sqlengine.Journal, func(), error) {
	switch cfg.DBAdapter {
	case AdapterPGX:
		return openPGXJournal(ctx, cfg, options)

	case AdapterSQL:
		db, err := OpenPostgresSQLDB(ctx, cfg.PostgresDSN, cfg.MaxConnections)
		if err != nil {
			return nil, nil, err
		}

		j, err := sqlengine.NewJournalFromSQLDB(db, options...)
		return withCloser(j, err, func() { _ = db.Close() })

	case AdapterSQLX:
		db, err := OpenPostgresSQLX(ctx, cfg.PostgresDSN, cfg.MaxConnections)
		if err != nil {
			return nil, nil, err
		}

		j, err := sqlengine.NewJournalFromSQLX(db, options...)
		return withCloser(j, err, func() { _ = db.Close() })

	default:
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
		j, err := sqlengine.NewJournalFromSQLDB(db, options...)
		return withCloser(j, err, func() { _ = db.Close() })
	}
}

func openPGXJournal(ctx context.Context, cfg Config, options []sqlengine.Option) (*sqlengine.Journal, func(), error) {
	pool, err := newPGXPool(ctx, cfg.PostgresDSN, cfg.MaxConnections)
	if err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		j, err := sqlengine.NewJournalFromPGXPool(pool, options...)
		return withCloser(j, err, pool.Close)
	}

	replica, err := newPGXPool(ctx, cfg.PostgresReplicaDSN, cfg.MaxConnections)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	j, err := sqlengine.NewJournalFromPGXPoolWithReplica(pool, replica, options...)
	return withCloser(j, err, func() {
		replica.Close()
		pool.Close()
	})
}

func newPGXPool(ctx context.Context, dsn string, maxConnections int32) (*pgxpool.Pool, error) {
	poolConfig, err := PostgresPGXPoolConfig(dsn, maxConnections)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(errors.New("pinging postgres failed"), err)
	}

	return pool, nil
}

func withCloser(j *sqlengine.Journal, err error, closeFn func()) (*sqlengine.Journal, func(), error) {
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return j, closeFn, nil
}

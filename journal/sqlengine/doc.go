// Package sqlengine implements the loan registry journal on PostgreSQL or SQLite.
//
// Construct a Journal with one of the factory functions:
//   - NewJournalFromPGXPool: pgx/v5 connection pool, optionally with a read replica
//   - NewJournalFromSQLDB: database/sql, e.g. with lib/pq or modernc.org/sqlite
//   - NewJournalFromSQLX: sqlx.DB
//
// The SQL dialect defaults to PostgreSQL. Use WithDialect(DialectSQLite) for SQLite.
//
// Appends use a single conditional INSERT ... SELECT guarded by the journal's current
// maximum sequence number, so two writers that read the same state cannot both append.
// No explicit transaction or lock is needed for that.
package sqlengine

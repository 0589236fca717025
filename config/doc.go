// Package config provides process configuration and database connection helpers
// for the loan registry journal.
//
// Configuration is read from LOANS_* environment variables. Connections can be made
// with different drivers (pgx.Pool, sql.DB via lib/pq, sqlx.DB, or embedded SQLite
// via modernc.org/sqlite), and OpenJournal picks the one named by LOANS_DB_ADAPTER.
package config

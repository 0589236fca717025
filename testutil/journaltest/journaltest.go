// Package journaltest opens journals for tests on the adapter selected by the environment.
//
// LOANS_TEST_ADAPTER picks the adapter (sqlite by default, or pgx, sql, sqlx).
// The Postgres adapters need LOANS_TEST_POSTGRES_DSN; without it those tests are skipped.
// Every journal gets its own uniquely named tables, so tests can share one database.
package journaltest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/timed-access-loans/config"
	"github.com/AntonStoeckl/timed-access-loans/journal/sqlengine"
)

const (
	envAdapter     = "LOANS_TEST_ADAPTER"
	envPostgresDSN = "LOANS_TEST_POSTGRES_DSN"
)

// ConfigFromEnv returns the database config for a test journal with unique table names.
func ConfigFromEnv(t testing.TB) config.Config {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err, "loading the default config failed")

	cfg.DBAdapter = strings.ToLower(os.Getenv(envAdapter))
	if cfg.DBAdapter == "" {
		cfg.DBAdapter = config.AdapterSQLite
	}

	if cfg.DBAdapter == config.AdapterSQLite {
		cfg.SQLitePath = filepath.Join(t.TempDir(), "loans.db")
	} else {
		cfg.PostgresDSN = os.Getenv(envPostgresDSN)
		if cfg.PostgresDSN == "" {
			t.Skipf("%s is not set, skipping the %s adapter", envPostgresDSN, cfg.DBAdapter)
		}
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg.EventsTable = "events_" + suffix
	cfg.SnapshotsTable = "snapshots_" + suffix

	return cfg
}

// OpenJournal opens a journal with its schema in place. It is closed when the test ends.
func OpenJournal(t testing.TB, options ...sqlengine.Option) *sqlengine.Journal {
	t.Helper()

	j, closeJournal, err := config.OpenJournal(context.Background(), ConfigFromEnv(t), options...)
	require.NoError(t, err, "opening the test journal failed")
	t.Cleanup(closeJournal)

	return j
}

package sqlengine

import (
	"regexp"

	"github.com/AntonStoeckl/timed-access-loans/journal"
)

var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Option defines a functional option for configuring a Journal.
type Option func(*Journal) error

// WithDialect selects the SQL dialect, DialectPostgres or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(j *Journal) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			j.dialect = dialect
			return nil
		default:
			return journal.ErrUnsupportedDialect
		}
	}
}

// WithEventsTableName sets the table name for events.
func WithEventsTableName(tableName string) Option {
	return func(j *Journal) error {
		if !validIdentifier.MatchString(tableName) {
			return journal.ErrInvalidTableName
		}

		j.eventsTable = tableName

		return nil
	}
}

// WithSnapshotsTableName sets the table name for snapshots.
func WithSnapshotsTableName(tableName string) Option {
	return func(j *Journal) error {
		if !validIdentifier.MatchString(tableName) {
			return journal.ErrInvalidTableName
		}

		j.snapshotsTable = tableName

		return nil
	}
}

// WithLogger sets the logger for the Journal.
//
// Debug level: SQL statements with execution timing
// Info level: event counts, durations, concurrency conflicts
// Warn level: failures closing result sets
// Error level: failures that cause an operation to fail.
func WithLogger(logger journal.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Journal. It takes precedence over WithLogger.
func WithContextualLogger(logger journal.ContextualLogger) Option {
	return func(j *Journal) error {
		j.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Journal.
func WithMetrics(collector journal.MetricsCollector) Option {
	return func(j *Journal) error {
		j.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Journal.
func WithTracing(collector journal.TracingCollector) Option {
	return func(j *Journal) error {
		j.tracingCollector = collector
		return nil
	}
}

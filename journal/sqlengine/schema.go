package sqlengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/timed-access-loans/journal"
)

const postgresEventsDDL = `CREATE TABLE IF NOT EXISTS %q (
	sequence_number BIGSERIAL PRIMARY KEY,
	event_type TEXT NOT NULL,
	occurred_at BIGINT NOT NULL,
	recorded_at BIGINT NOT NULL,
	payload JSONB NOT NULL,
	metadata JSONB NOT NULL
)`

const postgresSnapshotsDDL = `CREATE TABLE IF NOT EXISTS %q (
	name TEXT PRIMARY KEY,
	sequence_number BIGINT NOT NULL,
	data JSONB NOT NULL,
	created_at BIGINT NOT NULL
)`

const sqliteEventsDDL = `CREATE TABLE IF NOT EXISTS %q (
	sequence_number INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	occurred_at INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL,
	payload TEXT NOT NULL,
	metadata TEXT NOT NULL
)`

const sqliteSnapshotsDDL = `CREATE TABLE IF NOT EXISTS %q (
	name TEXT PRIMARY KEY,
	sequence_number INTEGER NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// CreateSchema creates the events and snapshots tables if they don't exist yet.
func (j *Journal) CreateSchema(ctx context.Context) error {
	eventsDDL, snapshotsDDL := postgresEventsDDL, postgresSnapshotsDDL
	if j.dialect == DialectSQLite {
		eventsDDL, snapshotsDDL = sqliteEventsDDL, sqliteSnapshotsDDL
	}

	// table names are validated identifiers, %q only adds the double quotes both dialects accept
	for _, statement := range []string{
		fmt.Sprintf(eventsDDL, j.eventsTable),
		fmt.Sprintf(snapshotsDDL, j.snapshotsTable),
	} {
		if _, err := j.db.Exec(ctx, statement); err != nil {
			j.logError(ctx, logMsgCreateSchemaFailed, err, logAttrQuery, statement)
			return errors.Join(journal.ErrCreatingSchemaFailed, err)
		}
	}

	j.logOperation(ctx, logMsgSchemaCreated, logAttrDialect, j.dialect)

	return nil
}

package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/journal/sqlengine/internal/adapters"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	DefaultEventsTableName    = "loan_events"
	DefaultSnapshotsTableName = "loan_snapshots"
)

const (
	colSequenceNumber = "sequence_number"
	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colRecordedAt     = "recorded_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colName           = "name"
	colData           = "data"
	colCreatedAt      = "created_at"

	castJsonb       = "?::jsonb"
	returningClause = " RETURNING " + colSequenceNumber
)

// Journal is the SQL implementation of the loan registry's event journal.
type Journal struct {
	db               adapters.DBAdapter
	dialect          string
	eventsTable      string
	snapshotsTable   string
	logger           journal.Logger
	contextualLogger journal.ContextualLogger
	metricsCollector journal.MetricsCollector
	tracingCollector journal.TracingCollector
}

// NewJournalFromPGXPool creates a Journal on a pgx pool. The dialect is always PostgreSQL.
func NewJournalFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Journal, error) {
	if pool == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapter(pool), options)
}

// NewJournalFromPGXPoolWithReplica creates a Journal that serves reads marked with
// journal.WithEventualConsistency from replica.
func NewJournalFromPGXPoolWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Journal, error) {
	if pool == nil || replica == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapterWithReplica(pool, replica), options)
}

// NewJournalFromSQLDB creates a Journal on a sql.DB.
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLAdapter(db), options)
}

// NewJournalFromSQLX creates a Journal on a sqlx.DB.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLXAdapter(db), options)
}

func newJournal(db adapters.DBAdapter, options []Option) (*Journal, error) {
	j := &Journal{
		db:             db,
		dialect:        DialectPostgres,
		eventsTable:    DefaultEventsTableName,
		snapshotsTable: DefaultSnapshotsTableName,
	}

	for _, option := range options {
		if err := option(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// Dialect returns the SQL dialect in use.
func (j *Journal) Dialect() string {
	return j.dialect
}

func (j *Journal) builder() goqu.DialectWrapper {
	return goqu.Dialect(j.dialect)
}

// jsonValue renders raw JSON as a column value of the dialect.
func (j *Journal) jsonValue(raw []byte) any {
	if j.dialect == DialectPostgres {
		return goqu.L(castJsonb, raw)
	}

	return goqu.V(string(raw))
}

// Append appends event if the journal's latest sequence number still equals expected,
// and returns the sequence number the event got. Otherwise, it fails with journal.ErrConcurrencyConflict.
func (j *Journal) Append(
	ctx context.Context,
	expected journal.SequenceNumber,
	event journal.StorableEvent,
) (journal.SequenceNumber, error) {

	observer, ctx := j.startObserving(ctx, operationAppend, map[string]string{
		spanAttrEventType:   event.EventType,
		spanAttrExpectedSeq: formatSeq(expected),
	})

	sqlQuery, err := j.buildAppendQuery(expected, event)
	if err != nil {
		j.logError(ctx, logMsgBuildQueryFailed, err, logAttrEventType, event.EventType)
		observer.failed(errorTypeBuildQuery)

		return 0, err
	}

	start := time.Now()
	rows, err := j.db.Query(journal.WithStrongConsistency(ctx), sqlQuery)
	j.logQuery(ctx, sqlQuery, operationAppend, time.Since(start))
	if err != nil {
		j.logError(ctx, logMsgAppendFailed, err, logAttrQuery, sqlQuery)
		observer.failed(errorTypeDatabase)

		return 0, errors.Join(journal.ErrAppendingEventFailed, err)
	}
	defer j.closeRows(ctx, rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			j.logError(ctx, logMsgAppendFailed, err)
			observer.failed(errorTypeDatabase)

			return 0, errors.Join(journal.ErrAppendingEventFailed, err)
		}

		j.logOperation(ctx, logMsgConcurrencyConflict, logAttrExpectedSequence, expected, logAttrEventType, event.EventType)
		observer.conflict()

		return 0, journal.ErrConcurrencyConflict
	}

	var seq int64
	if err := rows.Scan(&seq); err != nil {
		j.logError(ctx, logMsgScanRowFailed, err)
		observer.failed(errorTypeScan)

		return 0, errors.Join(journal.ErrScanningDBRowFailed, err)
	}

	j.logOperation(ctx, logMsgEventAppended, logAttrEventType, event.EventType, logAttrSequence, seq)
	observer.appended(journal.SequenceNumber(seq))

	return journal.SequenceNumber(seq), nil
}

func (j *Journal) buildAppendQuery(expected journal.SequenceNumber, event journal.StorableEvent) (string, error) {
	builder := j.builder()

	latest := builder.
		From(j.eventsTable).
		Select(goqu.MAX(colSequenceNumber))

	selectStmt := builder.
		Select(
			goqu.V(event.EventType),
			goqu.V(event.OccurredAt),
			goqu.V(event.RecordedAt.UnixMilli()),
			j.jsonValue(event.PayloadJSON),
			j.jsonValue(event.MetadataJSON),
		).
		Where(goqu.COALESCE(latest, 0).Eq(goqu.V(int64(expected))))

	insertStmt := builder.
		Insert(j.eventsTable).
		Cols(colEventType, colOccurredAt, colRecordedAt, colPayload, colMetadata).
		FromQuery(selectStmt)

	if j.dialect == DialectPostgres {
		insertStmt = insertStmt.Returning(colSequenceNumber)
	}

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(journal.ErrBuildingQueryFailed, err)
	}

	if j.dialect == DialectSQLite {
		sqlQuery += returningClause
	}

	return sqlQuery, nil
}

// Load returns all events with a sequence number greater than after, oldest first,
// together with the sequence number of the last returned event (after, if none).
func (j *Journal) Load(ctx context.Context, after journal.SequenceNumber) (journal.StorableEvents, journal.SequenceNumber, error) {
	observer, ctx := j.startObserving(ctx, operationLoad, map[string]string{spanAttrAfterSeq: formatSeq(after)})

	sqlQuery, _, err := j.builder().
		From(j.eventsTable).
		Select(colSequenceNumber, colEventType, colOccurredAt, colRecordedAt, colPayload, colMetadata).
		Where(goqu.C(colSequenceNumber).Gt(int64(after))).
		Order(goqu.C(colSequenceNumber).Asc()).
		ToSQL()
	if err != nil {
		observer.failed(errorTypeBuildQuery)
		return nil, after, errors.Join(journal.ErrBuildingQueryFailed, err)
	}

	start := time.Now()
	rows, err := j.db.Query(ctx, sqlQuery)
	j.logQuery(ctx, sqlQuery, operationLoad, time.Since(start))
	if err != nil {
		j.logError(ctx, logMsgQueryFailed, err, logAttrQuery, sqlQuery)
		observer.failed(errorTypeDatabase)

		return nil, after, errors.Join(journal.ErrQueryingEventsFailed, err)
	}
	defer j.closeRows(ctx, rows)

	events, last, err := j.scanEvents(ctx, rows, after)
	if err != nil {
		observer.failed(errorTypeScan)
		return nil, after, err
	}

	j.logOperation(ctx, logMsgEventsLoaded, logAttrEventCount, len(events), logAttrSequence, last)
	observer.loaded(len(events), last)

	return events, last, nil
}

func (j *Journal) scanEvents(
	ctx context.Context,
	rows adapters.DBRows,
	after journal.SequenceNumber,
) (journal.StorableEvents, journal.SequenceNumber, error) {

	events := make(journal.StorableEvents, 0)
	last := after

	for rows.Next() {
		var (
			seq        int64
			eventType  string
			occurredAt int64
			recordedAt int64
			payload    []byte
			metadata   []byte
		)

		if err := rows.Scan(&seq, &eventType, &occurredAt, &recordedAt, &payload, &metadata); err != nil {
			j.logError(ctx, logMsgScanRowFailed, err)
			return nil, after, errors.Join(journal.ErrScanningDBRowFailed, err)
		}

		event, err := journal.BuildStorableEvent(eventType, occurredAt, time.UnixMilli(recordedAt), payload, metadata)
		if err != nil {
			j.logError(ctx, logMsgBuildStorableEventFailed, err, logAttrEventType, eventType)
			return nil, after, errors.Join(journal.ErrBuildingStorableEventFailed, err)
		}

		last = journal.SequenceNumber(seq)
		events = append(events, event.WithSequenceNumber(last))
	}

	if err := rows.Err(); err != nil {
		j.logError(ctx, logMsgScanRowFailed, err)
		return nil, after, errors.Join(journal.ErrScanningDBRowFailed, err)
	}

	return events, last, nil
}

// LatestSequenceNumber returns the sequence number of the newest event, 0 for an empty journal.
func (j *Journal) LatestSequenceNumber(ctx context.Context) (journal.SequenceNumber, error) {
	sqlQuery, _, err := j.builder().
		From(j.eventsTable).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0)).
		ToSQL()
	if err != nil {
		return 0, errors.Join(journal.ErrBuildingQueryFailed, err)
	}

	seq, err := j.queryInt64(ctx, sqlQuery)
	if err != nil {
		return 0, errors.Join(journal.ErrQueryingEventsFailed, err)
	}

	return journal.SequenceNumber(seq), nil
}

func (j *Journal) queryInt64(ctx context.Context, sqlQuery string) (int64, error) {
	start := time.Now()
	rows, err := j.db.Query(ctx, sqlQuery)
	j.logQuery(ctx, sqlQuery, operationLatest, time.Since(start))
	if err != nil {
		j.logError(ctx, logMsgQueryFailed, err, logAttrQuery, sqlQuery)
		return 0, err
	}
	defer j.closeRows(ctx, rows)

	var value int64
	if rows.Next() {
		if err := rows.Scan(&value); err != nil {
			return 0, err
		}
	}

	return value, rows.Err()
}

func (j *Journal) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		j.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

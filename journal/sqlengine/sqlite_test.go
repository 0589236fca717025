package sqlengine_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	. "github.com/AntonStoeckl/timed-access-loans/journal/sqlengine"
	"github.com/AntonStoeckl/timed-access-loans/testutil/observability/testdoubles"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "opening sqlite failed")

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func givenJournal(t *testing.T, options ...Option) *Journal {
	t.Helper()

	options = append([]Option{WithDialect(DialectSQLite)}, options...)
	j, err := NewJournalFromSQLDB(openSQLite(t), options...)
	require.NoError(t, err, "creating the journal failed")
	require.NoError(t, j.CreateSchema(context.Background()), "creating the schema failed")

	return j
}

func fixtureEvent(t *testing.T, eventType string, occurredAt int64) journal.StorableEvent {
	t.Helper()

	event, err := journal.BuildStorableEvent(
		eventType,
		occurredAt,
		time.Unix(1700000000, 123456789),
		[]byte(`{"ResourceID":1,"Borrower":"ST2BORROWER"}`),
		[]byte(`{"CallerIdentity":"ST1LIBRARY"}`),
	)
	require.NoError(t, err)

	return event
}

func givenAppended(t *testing.T, j *Journal, events ...journal.StorableEvent) journal.SequenceNumber {
	t.Helper()

	latest, err := j.LatestSequenceNumber(context.Background())
	require.NoError(t, err)

	for _, event := range events {
		latest, err = j.Append(context.Background(), latest, event)
		require.NoError(t, err, "appending fixture event failed")
	}

	return latest
}

func Test_CreateSchema_IsIdempotent(t *testing.T) {
	// arrange
	j := givenJournal(t)

	// act
	err := j.CreateSchema(context.Background())

	// assert
	assert.NoError(t, err)
}

func Test_Append_AssignsConsecutiveSequenceNumbers(t *testing.T) {
	// arrange
	j := givenJournal(t)
	ctx := context.Background()

	// act
	first, errFirst := j.Append(ctx, 0, fixtureEvent(t, "LoanStarted", 10))
	second, errSecond := j.Append(ctx, first, fixtureEvent(t, "LoanEnded", 20))

	// assert
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	assert.Equal(t, journal.SequenceNumber(1), first)
	assert.Equal(t, journal.SequenceNumber(2), second)
}

func Test_Append_FailsWithConcurrencyConflict_WhenExpectedSequenceIsStale(t *testing.T) {
	testCases := []struct {
		description string
		expected    journal.SequenceNumber
	}{
		{description: "behind the journal", expected: 1},
		{description: "ahead of the journal", expected: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			j := givenJournal(t)
			givenAppended(t, j, fixtureEvent(t, "LoanStarted", 10), fixtureEvent(t, "LoanEnded", 20))

			// act
			seq, err := j.Append(context.Background(), tc.expected, fixtureEvent(t, "LoanStarted", 30))

			// assert
			assert.ErrorIs(t, err, journal.ErrConcurrencyConflict)
			assert.Zero(t, seq)

			latest, err := j.LatestSequenceNumber(context.Background())
			require.NoError(t, err)
			assert.Equal(t, journal.SequenceNumber(2), latest, "the journal must be unchanged")
		})
	}
}

func Test_Load_ReturnsEventsAfterTheGivenSequence_InOrder(t *testing.T) {
	// arrange
	j := givenJournal(t)
	started := fixtureEvent(t, "LoanStarted", 10)
	extended := fixtureEvent(t, "LoanExtended", 15)
	ended := fixtureEvent(t, "LoanEnded", 20)
	givenAppended(t, j, started, extended, ended)

	// act
	events, last, err := j.Load(context.Background(), 1)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, journal.SequenceNumber(3), last)

	assert.Equal(t, journal.SequenceNumber(2), events[0].SequenceNumber)
	assert.Equal(t, "LoanExtended", events[0].EventType)
	assert.Equal(t, int64(15), events[0].OccurredAt)
	assert.Equal(t, extended.RecordedAt, events[0].RecordedAt)
	assert.JSONEq(t, string(extended.PayloadJSON), string(events[0].PayloadJSON))
	assert.JSONEq(t, string(extended.MetadataJSON), string(events[0].MetadataJSON))

	assert.Equal(t, journal.SequenceNumber(3), events[1].SequenceNumber)
	assert.Equal(t, "LoanEnded", events[1].EventType)
}

func Test_Load_ReturnsNothing_WhenNoEventsFollow(t *testing.T) {
	// arrange
	j := givenJournal(t)
	givenAppended(t, j, fixtureEvent(t, "LoanStarted", 10))

	// act
	events, last, err := j.Load(context.Background(), 1)

	// assert
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, journal.SequenceNumber(1), last)
}

func Test_Append_RoundTripsPayloadsThatNeedEscaping(t *testing.T) {
	// arrange
	j := givenJournal(t)
	payload := []byte(`{"FailureInfo":"it's expired; DROP TABLE loan_events; --"}`)
	event, err := journal.BuildStorableEvent("AccessDenied", 7, time.Now(), payload, []byte(`{}`))
	require.NoError(t, err)

	// act
	givenAppended(t, j, event)
	events, _, err := j.Load(context.Background(), 0)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, string(payload), string(events[0].PayloadJSON))
}

func Test_LatestSequenceNumber_IsZero_ForAnEmptyJournal(t *testing.T) {
	// arrange
	j := givenJournal(t)

	// act
	latest, err := j.LatestSequenceNumber(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, journal.SequenceNumber(0), latest)
}

func Test_Snapshot_SaveAndLoad(t *testing.T) {
	// arrange
	j := givenJournal(t)
	ctx := context.Background()
	first, err := journal.BuildSnapshot("registry", 3, json.RawMessage(`{"LoanCounter":1}`))
	require.NoError(t, err)
	second, err := journal.BuildSnapshot("registry", 7, json.RawMessage(`{"LoanCounter":2}`))
	require.NoError(t, err)

	// act
	require.NoError(t, j.SaveSnapshot(ctx, first))
	require.NoError(t, j.SaveSnapshot(ctx, second))
	loaded, err := j.LoadSnapshot(ctx, "registry")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "registry", loaded.Name)
	assert.Equal(t, journal.SequenceNumber(7), loaded.SequenceNumber)
	assert.JSONEq(t, `{"LoanCounter":2}`, string(loaded.Data))
	assert.True(t, second.CreatedAt.Equal(loaded.CreatedAt))
}

func Test_LoadSnapshot_FailsWithNotFound_ForAnUnknownName(t *testing.T) {
	// arrange
	j := givenJournal(t)

	// act
	_, err := j.LoadSnapshot(context.Background(), "unknown")

	// assert
	assert.ErrorIs(t, err, journal.ErrSnapshotNotFound)
}

func Test_SaveSnapshot_RejectsInvalidSnapshots(t *testing.T) {
	// arrange
	j := givenJournal(t)
	invalid := journal.Snapshot{Name: "registry", Data: json.RawMessage(`{`)}

	// act
	err := j.SaveSnapshot(context.Background(), invalid)

	// assert
	assert.ErrorIs(t, err, journal.ErrSavingSnapshotFailed)
	assert.ErrorIs(t, err, journal.ErrInvalidSnapshotJSON)
}

func Test_Journal_UsesCustomTableNames(t *testing.T) {
	// arrange
	db := openSQLite(t)
	j, err := NewJournalFromSQLDB(
		db,
		WithDialect(DialectSQLite),
		WithEventsTableName("branch_events"),
		WithSnapshotsTableName("branch_snapshots"),
	)
	require.NoError(t, err)
	require.NoError(t, j.CreateSchema(context.Background()))

	// act
	givenAppended(t, j, fixtureEvent(t, "LoanStarted", 1))

	// assert
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM branch_events").Scan(&count))
	assert.Equal(t, 1, count)
}

func Test_Journal_ReportsMetricsAndSpans(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	j := givenJournal(t, WithMetrics(metrics), WithTracing(tracing), WithContextualLogger(logger))
	ctx := context.Background()

	// act
	seq, err := j.Append(ctx, 0, fixtureEvent(t, "LoanStarted", 1))
	require.NoError(t, err)
	_, err = j.Append(ctx, 0, fixtureEvent(t, "LoanStarted", 2))
	require.ErrorIs(t, err, journal.ErrConcurrencyConflict)
	_, _, err = j.Load(ctx, 0)
	require.NoError(t, err)

	// assert
	assert.Equal(t, journal.SequenceNumber(1), seq)
	assert.Len(t, metrics.DurationsNamed(MetricAppendDuration), 2)
	assert.Len(t, metrics.DurationsNamed(MetricQueryDuration), 1)
	require.Len(t, metrics.CountersNamed(MetricConcurrencyConflicts), 1)
	assert.Equal(t, "append", metrics.CountersNamed(MetricConcurrencyConflicts)[0].Labels["operation"])
	assert.True(t, metrics.HasValueRecord(MetricEventsLoaded))
	assert.False(t, metrics.HasCounterRecord(MetricDatabaseErrors))

	spans := tracing.GetSpanRecords()
	require.Len(t, spans, 3)
	assert.Equal(t, "journal.append", spans[0].Name)
	assert.Equal(t, "success", spans[0].Status)
	assert.Equal(t, "1", spans[0].EndAttributes["sequence_number"])
	assert.Equal(t, "conflict", spans[1].Status)
	assert.Equal(t, "journal.load", spans[2].Name)
	assert.Equal(t, "1", spans[2].EndAttributes["event_count"])

	assert.NotEmpty(t, logger.RecordsAt("debug"), "sql statements should be logged at debug level")
	assert.NotEmpty(t, logger.RecordsAt("info"))
}

func Test_Journal_ReportsDatabaseErrors(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	db := openSQLite(t)
	j, err := NewJournalFromSQLDB(db, WithDialect(DialectSQLite), WithMetrics(metrics), WithContextualLogger(logger))
	require.NoError(t, err)

	// act (no schema)
	_, _, err = j.Load(context.Background(), 0)

	// assert
	assert.ErrorIs(t, err, journal.ErrQueryingEventsFailed)
	require.Len(t, metrics.CountersNamed(MetricDatabaseErrors), 1)
	assert.Equal(t, "database", metrics.CountersNamed(MetricDatabaseErrors)[0].Labels["error_type"])
	assert.NotEmpty(t, logger.RecordsAt("error"))
}

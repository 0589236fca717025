package sqlengine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/timed-access-loans/journal"
)

const (
	operationAppend       = "append"
	operationLoad         = "load"
	operationQuery        = "query"
	operationLatest       = "latest"
	operationSaveSnapshot = "save_snapshot"
	operationLoadSnapshot = "load_snapshot"

	spanNamePrefix = "journal."
)

const (
	MetricQueryDuration        = "journal_query_duration_seconds"
	MetricAppendDuration       = "journal_append_duration_seconds"
	MetricSnapshotDuration     = "journal_snapshot_duration_seconds"
	MetricEventsLoaded         = "journal_events_loaded"
	MetricConcurrencyConflicts = "journal_concurrency_conflicts_total"
	MetricDatabaseErrors       = "journal_database_errors_total"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	errorTypeBuildQuery = "build_query"
	errorTypeDatabase   = "database"
	errorTypeScan       = "scan"
	errorTypeNotFound   = "not_found"
)

const (
	spanAttrOperation   = "operation"
	spanAttrEventType   = "event_type"
	spanAttrExpectedSeq = "expected_sequence"
	spanAttrAfterSeq    = "after_sequence"
	spanAttrFilterItems = "filter_items"
	spanAttrSequence    = "sequence_number"
	spanAttrEventCount  = "event_count"
	spanAttrErrorType   = "error_type"
	spanAttrSnapshot    = "snapshot_name"
	spanAttrDurationMS  = "duration_ms"
)

const (
	logMsgSQLExecuted              = "journal: sql executed for "
	logMsgSchemaCreated            = "journal: schema created"
	logMsgEventAppended            = "journal: event appended"
	logMsgEventsLoaded             = "journal: events loaded"
	logMsgEventsQueried            = "journal: events queried"
	logMsgSnapshotSaved            = "journal: snapshot saved"
	logMsgSnapshotLoaded           = "journal: snapshot loaded"
	logMsgConcurrencyConflict      = "journal: concurrency conflict"
	logMsgCreateSchemaFailed       = "journal: creating schema failed"
	logMsgBuildQueryFailed         = "journal: building query failed"
	logMsgQueryFailed              = "journal: query failed"
	logMsgAppendFailed             = "journal: append failed"
	logMsgScanRowFailed            = "journal: scanning row failed"
	logMsgBuildStorableEventFailed = "journal: building storable event failed"
	logMsgSnapshotFailed           = "journal: snapshot operation failed"
	logMsgCloseRowsFailed          = "journal: closing rows failed"

	logAttrQuery            = "query"
	logAttrDurationMS       = "duration_ms"
	logAttrError            = "error"
	logAttrDialect          = "dialect"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrSequence         = "sequence_number"
	logAttrExpectedSequence = "expected_sequence"
	logAttrSnapshotName     = "snapshot_name"
)

// operationObserver bundles the span, timing and metric labels of one journal operation.
type operationObserver struct {
	j         *Journal
	ctx       context.Context
	operation string
	start     time.Time
	span      journal.SpanContext
}

func (j *Journal) startObserving(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	observer := &operationObserver{j: j, operation: operation, start: time.Now()}

	if j.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		for k, v := range attrs {
			spanAttrs[k] = v
		}

		ctx, observer.span = j.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	observer.ctx = ctx

	return observer, ctx
}

func (o *operationObserver) durationMetric() string {
	switch o.operation {
	case operationAppend:
		return MetricAppendDuration
	case operationSaveSnapshot, operationLoadSnapshot:
		return MetricSnapshotDuration
	default:
		return MetricQueryDuration
	}
}

func (o *operationObserver) appended(seq journal.SequenceNumber) {
	o.finish(statusSuccess, map[string]string{spanAttrSequence: formatSeq(seq)})
}

func (o *operationObserver) loaded(count int, last journal.SequenceNumber) {
	o.j.recordValue(o.ctx, MetricEventsLoaded, float64(count), map[string]string{labelOperation: o.operation})
	o.finish(statusSuccess, map[string]string{
		spanAttrEventCount: strconv.Itoa(count),
		spanAttrSequence:   formatSeq(last),
	})
}

func (o *operationObserver) succeeded(attrs map[string]string) {
	o.finish(statusSuccess, attrs)
}

func (o *operationObserver) conflict() {
	o.j.incrementCounter(o.ctx, MetricConcurrencyConflicts, map[string]string{labelOperation: o.operation})
	o.finish(statusConflict, nil)
}

func (o *operationObserver) failed(errorType string) {
	if errorType != errorTypeNotFound {
		o.j.incrementCounter(o.ctx, MetricDatabaseErrors, map[string]string{
			labelOperation: o.operation,
			labelErrorType: errorType,
		})
	}

	o.finish(statusError, map[string]string{spanAttrErrorType: errorType})
}

func (o *operationObserver) finish(status string, attrs map[string]string) {
	duration := time.Since(o.start)

	o.j.recordDuration(o.ctx, o.durationMetric(), duration, map[string]string{
		labelOperation: o.operation,
		labelStatus:    status,
	})

	if o.span == nil {
		return
	}

	endAttrs := map[string]string{spanAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 3, 64)}
	for k, v := range attrs {
		endAttrs[k] = v
	}

	o.j.tracingCollector.FinishSpan(o.span, status, endAttrs)
}

func (j *Journal) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if j.metricsCollector == nil {
		return
	}

	if contextual, ok := j.metricsCollector.(journal.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	j.metricsCollector.RecordDuration(metric, d, labels)
}

func (j *Journal) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if j.metricsCollector == nil {
		return
	}

	if contextual, ok := j.metricsCollector.(journal.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	j.metricsCollector.IncrementCounter(metric, labels)
}

func (j *Journal) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if j.metricsCollector == nil {
		return
	}

	if contextual, ok := j.metricsCollector.(journal.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	j.metricsCollector.RecordValue(metric, value, labels)
}

// logQuery logs SQL statements with execution time at debug level.
func (j *Journal) logQuery(ctx context.Context, sqlQuery, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	case j.logger != nil:
		j.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

func (j *Journal) logOperation(ctx context.Context, msg string, args ...any) {
	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.InfoContext(ctx, msg, args...)
	case j.logger != nil:
		j.logger.Info(msg, args...)
	}
}

func (j *Journal) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.WarnContext(ctx, msg, args...)
	case j.logger != nil:
		j.logger.Warn(msg, args...)
	}
}

func (j *Journal) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	case j.logger != nil:
		j.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatSeq(seq journal.SequenceNumber) string {
	return strconv.FormatUint(seq, 10)
}

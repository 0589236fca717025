package sqlengine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/timed-access-loans/journal"
)

// Query returns the events matching filter, oldest first.
func (j *Journal) Query(ctx context.Context, filter journal.Filter) (journal.StorableEvents, error) {
	observer, ctx := j.startObserving(ctx, operationQuery, map[string]string{
		spanAttrFilterItems: strconv.Itoa(len(filter.Items())),
	})

	sqlQuery, err := j.buildSelectQuery(filter)
	if err != nil {
		j.logError(ctx, logMsgBuildQueryFailed, err)
		observer.failed(errorTypeBuildQuery)

		return nil, errors.Join(journal.ErrBuildingQueryFailed, err)
	}

	start := time.Now()
	rows, err := j.db.Query(ctx, sqlQuery)
	j.logQuery(ctx, sqlQuery, operationQuery, time.Since(start))
	if err != nil {
		j.logError(ctx, logMsgQueryFailed, err, logAttrQuery, sqlQuery)
		observer.failed(errorTypeDatabase)

		return nil, errors.Join(journal.ErrQueryingEventsFailed, err)
	}
	defer j.closeRows(ctx, rows)

	events, last, err := j.scanEvents(ctx, rows, 0)
	if err != nil {
		observer.failed(errorTypeScan)
		return nil, err
	}

	j.logOperation(ctx, logMsgEventsQueried, logAttrEventCount, len(events))
	observer.loaded(len(events), last)

	return events, nil
}

func (j *Journal) buildSelectQuery(filter journal.Filter) (string, error) {
	selectStmt := j.builder().
		From(j.eventsTable).
		Select(colSequenceNumber, colEventType, colOccurredAt, colRecordedAt, colPayload, colMetadata).
		Order(goqu.C(colSequenceNumber).Asc())

	where, err := j.whereClause(filter)
	if err != nil {
		return "", err
	}

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, err := selectStmt.ToSQL()

	return sqlQuery, err
}

func (j *Journal) whereClause(filter journal.Filter) (exp.Expression, error) {
	if len(filter.Items()) == 0 {
		return nil, nil
	}

	itemExpressions := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]exp.Expression, 0, len(item.EventTypes()))
		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{colEventType: eventType})
		}

		predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			expression, err := j.predicateExpression(predicate)
			if err != nil {
				return nil, err
			}
			predicateExpressions = append(predicateExpressions, expression)
		}

		itemExpressions = append(itemExpressions, goqu.And(goqu.Or(eventTypeExpressions...), goqu.And(predicateExpressions...)))
	}

	return goqu.Or(itemExpressions...), nil
}

// predicateExpression matches a top-level payload field: JSONB containment on Postgres,
// json_extract on SQLite. Keys and values are rendered as quoted literals.
func (j *Journal) predicateExpression(predicate journal.FilterPredicate) (exp.Expression, error) {
	if j.dialect == DialectSQLite {
		return goqu.L("json_extract("+colPayload+", ?)", "$."+predicate.Key()).Eq(predicate.Val()), nil
	}

	containment, err := jsoniter.ConfigFastest.Marshal(map[string]any{predicate.Key(): predicate.Val()})
	if err != nil {
		return nil, err
	}

	return goqu.L(colPayload+" @> "+castJsonb, string(containment)), nil
}

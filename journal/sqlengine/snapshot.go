package sqlengine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/timed-access-loans/journal"
)

const excludedPrefix = "excluded."

// SaveSnapshot inserts the snapshot or replaces an existing one with the same name.
func (j *Journal) SaveSnapshot(ctx context.Context, snapshot journal.Snapshot) error {
	observer, ctx := j.startObserving(ctx, operationSaveSnapshot, map[string]string{spanAttrSnapshot: snapshot.Name})

	if err := snapshot.Validate(); err != nil {
		observer.failed(errorTypeBuildQuery)
		return errors.Join(journal.ErrSavingSnapshotFailed, err)
	}

	sqlQuery, _, err := j.builder().
		Insert(j.snapshotsTable).
		Rows(goqu.Record{
			colName:           snapshot.Name,
			colSequenceNumber: int64(snapshot.SequenceNumber),
			colData:           j.jsonValue(snapshot.Data),
			colCreatedAt:      snapshot.CreatedAt.UnixMilli(),
		}).
		OnConflict(goqu.DoUpdate(colName, goqu.Record{
			colSequenceNumber: goqu.L(excludedPrefix + colSequenceNumber),
			colData:           goqu.L(excludedPrefix + colData),
			colCreatedAt:      goqu.L(excludedPrefix + colCreatedAt),
		})).
		ToSQL()
	if err != nil {
		j.logError(ctx, logMsgBuildQueryFailed, err, logAttrSnapshotName, snapshot.Name)
		observer.failed(errorTypeBuildQuery)

		return errors.Join(journal.ErrSavingSnapshotFailed, journal.ErrBuildingQueryFailed, err)
	}

	start := time.Now()
	_, err = j.db.Exec(ctx, sqlQuery)
	j.logQuery(ctx, sqlQuery, operationSaveSnapshot, time.Since(start))
	if err != nil {
		j.logError(ctx, logMsgSnapshotFailed, err, logAttrSnapshotName, snapshot.Name)
		observer.failed(errorTypeDatabase)

		return errors.Join(journal.ErrSavingSnapshotFailed, err)
	}

	j.logOperation(ctx, logMsgSnapshotSaved, logAttrSnapshotName, snapshot.Name, logAttrSequence, snapshot.SequenceNumber)
	observer.succeeded(map[string]string{spanAttrSequence: formatSeq(snapshot.SequenceNumber)})

	return nil
}

// LoadSnapshot returns the snapshot stored under name, or journal.ErrSnapshotNotFound.
func (j *Journal) LoadSnapshot(ctx context.Context, name string) (journal.Snapshot, error) {
	observer, ctx := j.startObserving(ctx, operationLoadSnapshot, map[string]string{spanAttrSnapshot: name})

	sqlQuery, _, err := j.builder().
		From(j.snapshotsTable).
		Select(colSequenceNumber, colData, colCreatedAt).
		Where(goqu.C(colName).Eq(name)).
		ToSQL()
	if err != nil {
		observer.failed(errorTypeBuildQuery)
		return journal.Snapshot{}, errors.Join(journal.ErrLoadingSnapshotFailed, journal.ErrBuildingQueryFailed, err)
	}

	start := time.Now()
	rows, err := j.db.Query(ctx, sqlQuery)
	j.logQuery(ctx, sqlQuery, operationLoadSnapshot, time.Since(start))
	if err != nil {
		j.logError(ctx, logMsgSnapshotFailed, err, logAttrSnapshotName, name)
		observer.failed(errorTypeDatabase)

		return journal.Snapshot{}, errors.Join(journal.ErrLoadingSnapshotFailed, err)
	}
	defer j.closeRows(ctx, rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			observer.failed(errorTypeDatabase)
			return journal.Snapshot{}, errors.Join(journal.ErrLoadingSnapshotFailed, err)
		}

		observer.failed(errorTypeNotFound)

		return journal.Snapshot{}, journal.ErrSnapshotNotFound
	}

	var (
		seq       int64
		data      []byte
		createdAt int64
	)

	if err := rows.Scan(&seq, &data, &createdAt); err != nil {
		j.logError(ctx, logMsgScanRowFailed, err, logAttrSnapshotName, name)
		observer.failed(errorTypeScan)

		return journal.Snapshot{}, errors.Join(journal.ErrLoadingSnapshotFailed, journal.ErrScanningDBRowFailed, err)
	}

	snapshot := journal.Snapshot{
		Name:           name,
		SequenceNumber: journal.SequenceNumber(seq),
		Data:           json.RawMessage(data),
		CreatedAt:      time.UnixMilli(createdAt).UTC(),
	}

	j.logOperation(ctx, logMsgSnapshotLoaded, logAttrSnapshotName, name, logAttrSequence, seq)
	observer.succeeded(map[string]string{spanAttrSequence: formatSeq(snapshot.SequenceNumber)})

	return snapshot, nil
}

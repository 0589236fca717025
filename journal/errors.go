package journal

import "errors"

var (
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrInvalidTableName            = errors.New("table name must be a plain sql identifier")
	ErrUnsupportedDialect          = errors.New("unsupported sql dialect")
	ErrConcurrencyConflict         = errors.New("concurrency conflict, the journal moved past the expected sequence number")
	ErrCreatingSchemaFailed        = errors.New("creating schema failed")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrAppendingEventFailed        = errors.New("appending event failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrSavingSnapshotFailed        = errors.New("saving snapshot failed")
	ErrLoadingSnapshotFailed       = errors.New("loading snapshot failed")
	ErrSnapshotNotFound            = errors.New("snapshot not found")
)
